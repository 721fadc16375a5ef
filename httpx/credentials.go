package httpx

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/oauth"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlopes/apreciador/config"
)

// credentialsVerifier authenticates the single configured admin account and
// keeps issued refresh-token ids in memory. Reader identity never passes
// through here: the host CMS authenticates readers and forwards their
// identity in the request payload.
type credentialsVerifier struct {
	cfg config.Config

	mu     sync.Mutex
	tokens map[string]tokenEntry
}

type tokenEntry struct {
	refreshTokenID string
	expiration     time.Time
}

func CredentialsVerifier(cfg config.Config) oauth.CredentialsVerifier {
	return &credentialsVerifier{
		cfg:    cfg,
		tokens: map[string]tokenEntry{},
	}
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	if username != cs.cfg.AdminUser {
		return errors.New("unknown user")
	}
	return bcrypt.CompareHashAndPassword([]byte(cs.cfg.AdminPasswordHash), []byte(password))
}

func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.tokens[credential+":"+tokenID] = tokenEntry{
		refreshTokenID: refreshTokenID,
		expiration:     time.Now().Add(8760 * time.Hour),
	}
	return nil
}

func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	key := credential + ":" + tokenID
	entry, ok := cs.tokens[key]
	if !ok || entry.refreshTokenID != refreshTokenID {
		return errors.New("could not refresh")
	}
	// refresh tokens are single use
	delete(cs.tokens, key)

	if entry.expiration.Before(time.Now()) {
		return errors.New("could not refresh")
	}
	return nil
}

func (*credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{"roles": "admin"}, nil
}

func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}

func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
