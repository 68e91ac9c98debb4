// Package auth obtains OAuth credentials for read-only YouTube account
// access. Tokens are cached on disk so the browser flow runs once.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// ErrSetupRequired indicates the OAuth client secrets file is missing,
// so the user has to create credentials in the Google Cloud console first.
var ErrSetupRequired = errors.New("auth: oauth client secrets missing")

// flowTimeout bounds how long the interactive flow waits for the user.
const flowTimeout = 5 * time.Minute

// Options configures the OAuth flow.
type Options struct {
	// ClientSecretsFile is the OAuth client JSON from the Cloud console.
	ClientSecretsFile string
	// TokenFile is where the obtained token is cached between runs.
	TokenFile string
}

// Client returns an HTTP client authorized for read-only YouTube account
// access. A cached token is reused and refreshed; without one, the
// interactive browser flow runs against a loopback listener.
func Client(ctx context.Context, opts Options) (*http.Client, error) {
	conf, err := configFromSecrets(opts.ClientSecretsFile)
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(opts.TokenFile)
	if err != nil {
		tok, err = authorize(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err := saveToken(opts.TokenFile, tok); err != nil {
			log.Warn().Err(err).Str("path", opts.TokenFile).Msg("could not cache oauth token")
		}
	}

	source := &savingSource{
		path: opts.TokenFile,
		src:  conf.TokenSource(ctx, tok),
		last: tok.AccessToken,
	}
	return oauth2.NewClient(ctx, source), nil
}

// SetupInstructions returns the guided message shown when client secrets
// are missing.
func SetupInstructions() string {
	return `YouTube account access is not configured.

To set up OAuth credentials:
  1. Open https://console.cloud.google.com/apis/credentials
  2. Create (or pick) a project and enable the YouTube Data API v3
  3. Create an OAuth client ID of type "Desktop app"
  4. Download the JSON and save it as client_secret.json
     (or point client_secrets_file at it)

Then rerun this command. A browser window will ask you to approve
read-only access to your subscriptions.`
}

// configFromSecrets loads the OAuth client configuration.
func configFromSecrets(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w (looked for %s)", ErrSetupRequired, path)
		}
		return nil, fmt.Errorf("read client secrets: %w", err)
	}

	conf, err := google.ConfigFromJSON(data, youtube.YoutubeReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets %s: %w", path, err)
	}
	return conf, nil
}

// authorize runs the interactive consent flow: a loopback HTTP listener
// receives the authorization code that the browser redirect delivers.
func authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Close()

	conf.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr())

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	codes := make(chan string, 1)
	failures := make(chan error, 1)
	srv := &http.Server{Handler: callbackHandler(state, codes, failures)}
	go srv.Serve(listener)
	defer srv.Close()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Fprintf(os.Stderr, "Open this URL in your browser to authorize access:\n\n  %s\n\n", authURL)
	openBrowser(authURL)

	var code string
	select {
	case code = <-codes:
	case err := <-failures:
		return nil, err
	case <-time.After(flowTimeout):
		return nil, errors.New("auth: timed out waiting for authorization")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

// callbackHandler accepts the OAuth redirect, checks the state parameter,
// and delivers the authorization code.
func callbackHandler(state string, codes chan<- string, failures chan<- error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusForbidden)
			select {
			case failures <- errors.New("auth: state mismatch in callback"):
			default:
			}
			return
		}
		if errMsg := q.Get("error"); errMsg != "" {
			http.Error(w, "authorization denied", http.StatusBadRequest)
			select {
			case failures <- fmt.Errorf("auth: authorization denied: %s", errMsg):
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorized. You can close this tab and return to the terminal.")
		select {
		case codes <- code:
		default:
		}
	}
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// openBrowser tries to open url in the user's browser. Failure is fine;
// the URL is printed either way.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Debug().Err(err).Msg("could not open browser")
	}
}

// tokenFromFile reads a cached token.
func tokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	return tok, nil
}

// saveToken writes the token with owner-only permissions.
func saveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// savingSource persists refreshed tokens so later runs skip the browser.
type savingSource struct {
	path string
	src  oauth2.TokenSource
	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.path, tok); err != nil {
			log.Warn().Err(err).Str("path", s.path).Msg("could not persist refreshed token")
		}
	}
	return tok, nil
}
