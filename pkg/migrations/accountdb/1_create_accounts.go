package accountdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/cardlink-labs/cardlink-middleware/pkg/accountstore"
	mghelper "github.com/cardlink-labs/cardlink-middleware/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating accounts table...")
		if err := mghelper.CreateSchema(ctx, db, &accountstore.AccountDao{}); err != nil {
			return err
		}
		return mghelper.CreateIndex(ctx, db, "accounts", "accounts_user_id_idx", "user_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping accounts table...")
		return mghelper.DropTables(ctx, db, &accountstore.AccountDao{})
	})
}
