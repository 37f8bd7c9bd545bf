// Package cloud is the remote side of backup sync: a Provider that stores one
// snapshot file per account, and a connectivity probe.
package cloud

import (
	"context"
	"errors"
	"time"
)

// BackupFileName is the single remote file a device syncs to.
const BackupFileName = "kiranamitra-backup.json"

// ErrNoRemoteFile is returned by Download when the account has no backup yet.
var ErrNoRemoteFile = errors.New("no remote backup")

// RemoteFile is a downloaded snapshot with its remote metadata.
type RemoteFile struct {
	Data       []byte
	ModifiedAt time.Time
}

// Provider is a remote store for the backup file. A provider whose
// credentials are missing reports Configured() == false and sync stays off.
type Provider interface {
	Configured() bool
	// SignIn connects with stored credentials and returns the account name.
	SignIn(ctx context.Context) (account string, err error)
	SignOut(ctx context.Context) error
	// Upload replaces the remote file, creating it on first use.
	Upload(ctx context.Context, data []byte) error
	Download(ctx context.Context) (*RemoteFile, error)
}

// Connectivity reports whether the network is reachable right now.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// ConnectivityFunc adapts a function to Connectivity.
type ConnectivityFunc func(ctx context.Context) bool

func (f ConnectivityFunc) Online(ctx context.Context) bool { return f(ctx) }

// Authorizer is implemented by providers that need a one-time consent in the
// browser before SignIn works.
type Authorizer interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) error
}
