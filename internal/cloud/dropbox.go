package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/store"
)

const tokenKey = "cloud.dropbox.token"

// Dropbox talks to the Dropbox HTTP API v2 using a token obtained through
// the implicit grant flow. The token lives in the workspace key-value store
// so a restart keeps the connection.
type Dropbox struct {
	appKey      string
	redirectURI string
	st          store.Store
	client      *http.Client

	// Overridable in tests.
	authBase    string
	apiBase     string
	contentBase string
}

var _ Provider = (*Dropbox)(nil)

// NewDropbox creates a Dropbox provider for the given app key.
func NewDropbox(appKey, redirectURI string, st store.Store) *Dropbox {
	return &Dropbox{
		appKey:      appKey,
		redirectURI: redirectURI,
		st:          st,
		client:      &http.Client{Timeout: 30 * time.Second},
		authBase:    "https://www.dropbox.com",
		apiBase:     "https://api.dropboxapi.com",
		contentBase: "https://content.dropboxapi.com",
	}
}

func (d *Dropbox) Name() string { return "dropbox" }

// AuthURL builds the implicit-grant authorization URL. The client receives
// the token in the redirect fragment and posts it back via Connect.
func (d *Dropbox) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", d.appKey)
	q.Set("response_type", "token")
	q.Set("redirect_uri", d.redirectURI)
	q.Set("state", state)
	return d.authBase + "/oauth2/authorize?" + q.Encode()
}

func (d *Dropbox) Connect(_ context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("cloud: connect: empty token")
	}
	if err := d.st.PutState(tokenKey, token); err != nil {
		return fmt.Errorf("cloud: store token: %w", err)
	}
	return nil
}

func (d *Dropbox) Connected(_ context.Context) bool {
	token, err := d.st.GetState(tokenKey)
	return err == nil && token != ""
}

func (d *Dropbox) Logout(_ context.Context) error {
	if err := d.st.DeleteState(tokenKey); err != nil {
		return fmt.Errorf("cloud: delete token: %w", err)
	}
	return nil
}

func (d *Dropbox) token() (string, error) {
	token, err := d.st.GetState(tokenKey)
	if err != nil {
		return "", fmt.Errorf("cloud: read token: %w", err)
	}
	if token == "" {
		return "", apperr.ErrNotConnected
	}
	return token, nil
}

// Upload stores data at /<name> in the app folder, overwriting any previous
// file of the same name.
func (d *Dropbox) Upload(ctx context.Context, name string, data []byte) (string, error) {
	token, err := d.token()
	if err != nil {
		return "", err
	}

	arg, _ := json.Marshal(map[string]any{
		"path": "/" + name,
		"mode": "overwrite",
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.contentBase+"/2/files/upload", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("cloud: upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Dropbox-API-Arg", string(arg))
	req.Header.Set("Content-Type", "application/octet-stream")

	var meta struct {
		PathLower string `json:"path_lower"`
	}
	if err := d.do(req, &meta); err != nil {
		return "", err
	}
	return meta.PathLower, nil
}

// List returns every .json backup in the app folder, newest first.
func (d *Dropbox) List(ctx context.Context) ([]Backup, error) {
	token, err := d.token()
	if err != nil {
		return nil, err
	}

	body, _ := json.Marshal(map[string]any{"path": ""})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.apiBase+"/2/files/list_folder", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cloud: list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		Entries []struct {
			Tag            string    `json:".tag"`
			Name           string    `json:"name"`
			PathLower      string    `json:"path_lower"`
			Size           int64     `json:"size"`
			ServerModified time.Time `json:"server_modified"`
		} `json:"entries"`
	}
	if err := d.do(req, &resp); err != nil {
		return nil, err
	}

	backups := make([]Backup, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		if e.Tag != "file" || !strings.HasSuffix(e.Name, ".json") {
			continue
		}
		backups = append(backups, Backup{
			Name:     e.Name,
			Path:     e.PathLower,
			Size:     e.Size,
			Modified: e.ServerModified,
		})
	}
	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Modified.After(backups[j].Modified)
	})
	return backups, nil
}

// Download fetches one backup by remote path.
func (d *Dropbox) Download(ctx context.Context, path string) ([]byte, error) {
	token, err := d.token()
	if err != nil {
		return nil, err
	}

	arg, _ := json.Marshal(map[string]string{"path": path})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.contentBase+"/2/files/download", nil)
	if err != nil {
		return nil, fmt.Errorf("cloud: download request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Dropbox-API-Arg", string(arg))

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloud: download: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cloud: read download: %w", err)
	}
	return data, nil
}

// do executes the request and decodes the JSON response into out.
func (d *Dropbox) do(req *http.Request, out any) error {
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("cloud: %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cloud: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return apperr.ErrUnauthorized
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("cloud: %s: status %d: %s", resp.Request.URL.Path, resp.StatusCode, body)
	}
	return nil
}
