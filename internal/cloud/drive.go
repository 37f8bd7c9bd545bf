package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const appDataFolder = "appDataFolder"

// Drive stores the backup in the Google Drive app data folder, which only this
// app can see. Credentials come from an OAuth client JSON file; the user token
// is kept in tokenFile after the first consent.
type Drive struct {
	cfg       *oauth2.Config
	tokenFile string

	mu  sync.Mutex
	srv *drive.Service
}

// NewDrive loads the OAuth client. A missing or unreadable credentials file
// gives an unconfigured provider rather than an error, so the app still runs
// without cloud sync.
func NewDrive(credentialsFile, tokenFile string) *Drive {
	d := &Drive{tokenFile: tokenFile}
	if credentialsFile == "" {
		return d
	}
	raw, err := os.ReadFile(credentialsFile)
	if err != nil {
		log.Warn().Err(err).Str("file", credentialsFile).Msg("google credentials unavailable, cloud sync disabled")
		return d
	}
	cfg, err := google.ConfigFromJSON(raw, drive.DriveAppdataScope)
	if err != nil {
		log.Warn().Err(err).Msg("invalid google credentials, cloud sync disabled")
		return d
	}
	d.cfg = cfg
	return d
}

func (d *Drive) Configured() bool { return d.cfg != nil && d.tokenFile != "" }

// AuthURL is the consent page the user opens once to authorise the app.
func (d *Drive) AuthURL(state string) string {
	return d.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the consent code for a token and stores it.
func (d *Drive) Exchange(ctx context.Context, code string) error {
	tok, err := d.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("drive: exchange code: %w", err)
	}
	return d.saveToken(tok)
}

func (d *Drive) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(d.tokenFile), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(d.tokenFile, raw, 0o600)
}

func (d *Drive) loadToken() (*oauth2.Token, error) {
	raw, err := os.ReadFile(d.tokenFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apierror.ErrNotSignedIn
	}
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("drive: token file: %w", err)
	}
	return &tok, nil
}

func (d *Drive) service(ctx context.Context) (*drive.Service, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.srv != nil {
		return d.srv, nil
	}
	if !d.Configured() {
		return nil, apierror.ErrSyncDisabled
	}
	tok, err := d.loadToken()
	if err != nil {
		return nil, err
	}
	// The client refreshes the access token itself; it outlives ctx.
	client := d.cfg.Client(context.Background(), tok)
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("drive: new service: %w", err)
	}
	d.srv = srv
	return srv, nil
}

func (d *Drive) SignIn(ctx context.Context) (string, error) {
	srv, err := d.service(ctx)
	if err != nil {
		return "", err
	}
	about, err := srv.About.Get().Fields("user(emailAddress)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("drive: about: %w", err)
	}
	if about.User == nil {
		return "", errors.New("drive: account has no user info")
	}
	return about.User.EmailAddress, nil
}

// SignOut forgets the stored token.
func (d *Drive) SignOut(context.Context) error {
	d.mu.Lock()
	d.srv = nil
	d.mu.Unlock()
	if d.tokenFile == "" {
		return nil
	}
	if err := os.Remove(d.tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (d *Drive) find(ctx context.Context, srv *drive.Service) (*drive.File, error) {
	list, err := srv.Files.List().
		Spaces(appDataFolder).
		Q(fmt.Sprintf("name = '%s' and trashed = false", BackupFileName)).
		Fields("files(id, name, modifiedTime)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drive: list: %w", err)
	}
	if len(list.Files) == 0 {
		return nil, nil
	}
	return list.Files[0], nil
}

func (d *Drive) Upload(ctx context.Context, data []byte) error {
	srv, err := d.service(ctx)
	if err != nil {
		return err
	}
	existing, err := d.find(ctx, srv)
	if err != nil {
		return err
	}
	if existing != nil {
		_, err = srv.Files.Update(existing.Id, &drive.File{}).
			Media(bytes.NewReader(data)).Context(ctx).Do()
	} else {
		_, err = srv.Files.Create(&drive.File{
			Name:     BackupFileName,
			Parents:  []string{appDataFolder},
			MimeType: "application/json",
		}).Media(bytes.NewReader(data)).Context(ctx).Do()
	}
	if err != nil {
		return fmt.Errorf("drive: upload: %w", err)
	}
	return nil
}

func (d *Drive) Download(ctx context.Context) (*RemoteFile, error) {
	srv, err := d.service(ctx)
	if err != nil {
		return nil, err
	}
	f, err := d.find(ctx, srv)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrNoRemoteFile
	}
	resp, err := srv.Files.Get(f.Id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive: download: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("drive: read: %w", err)
	}
	out := &RemoteFile{Data: data}
	if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		out.ModifiedAt = t
	}
	return out, nil
}
