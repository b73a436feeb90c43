// Package activation implements the account activation workflow: the
// sequence that takes a freshly authenticated identity and produces a fully
// usable card account with delegated custodial wallets.
//
// The workflow runs two stages in strict order. The sync stage creates or
// syncs the backend user record; the delegation stage fans out one
// delegation call per chain with a known wallet address. A presentation
// layer drives the workflow through Workflow and renders its Snapshot.
package activation

// Stage is the presentation-facing phase of one activation attempt.
type Stage string

const (
	StageInitializing      Stage = "initializing"
	StageCreatingUser      Stage = "creating_user"
	StageDelegatingWallets Stage = "delegating_wallets"
	StageCompleted         Stage = "completed"
	StageError             Stage = "error"
)

func (s Stage) String() string { return string(s) }

// Terminal reports whether the stage ends an activation attempt.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageError
}

// Status messages surfaced to the presentation layer. Observational only;
// they carry no control-flow meaning.
const (
	msgCreatingUser      = "Creating your account…"
	msgDelegatingWallets = "Setting up your wallets…"
	msgCompleted         = "Account ready!"
	msgFailed            = "Something went wrong. Please try again."
)
