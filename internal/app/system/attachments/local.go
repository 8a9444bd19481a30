package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/spf13/afero"
)

// Local keeps attachments on an afero filesystem. Download links point at
// URLPrefix/{token}, where the token is an HMAC-signed {key, expiry} pair.
type Local struct {
	fs        afero.Fs
	codec     *securecookie.SecureCookie
	urlPrefix string
	now       func() time.Time
}

type signedToken struct {
	Key string `json:"k"`
	Exp int64  `json:"e"`
}

const tokenName = "attachment"

// NewLocal returns a Local store. hashKey signs download tokens and must be
// at least 32 bytes.
func NewLocal(fs afero.Fs, hashKey []byte, urlPrefix string) (*Local, error) {
	if len(hashKey) < 32 {
		return nil, errors.New("attachments: hash key must be at least 32 bytes")
	}
	codec := securecookie.New(hashKey, nil)
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(0) // expiry is carried in the token itself
	if urlPrefix == "" {
		urlPrefix = "/files"
	}
	return &Local{fs: fs, codec: codec, urlPrefix: urlPrefix, now: time.Now}, nil
}

// NewLocalDir is NewLocal over a directory on disk.
func NewLocalDir(dir string, hashKey []byte, urlPrefix string) (*Local, error) {
	osfs := afero.NewOsFs()
	if err := osfs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("attachments: create %s: %w", dir, err)
	}
	return NewLocal(afero.NewBasePathFs(osfs, dir), hashKey, urlPrefix)
}

func (l *Local) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := l.fs.MkdirAll(path.Dir(key), 0o755); err != nil {
		return fmt.Errorf("attachments: mkdir: %w", err)
	}
	f, err := l.fs.OpenFile(key, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("attachments: create: %w", err)
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxUploadSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxUploadSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = l.fs.Remove(key)
		if errors.Is(err, ErrTooLarge) {
			return err
		}
		return fmt.Errorf("attachments: write: %w", err)
	}
	return nil
}

func (l *Local) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if ok, _ := afero.Exists(l.fs, key); !ok {
		return "", ErrNotFound
	}
	tok, err := l.codec.Encode(tokenName, signedToken{
		Key: key,
		Exp: l.now().Add(ttlOrDefault(ttl)).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("attachments: sign: %w", err)
	}
	return l.urlPrefix + "/" + tok, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := l.fs.Remove(key); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("attachments: delete: %w", err)
	}
	return nil
}

// Resolve verifies token and returns the key it grants. Forged, malformed and
// expired tokens all yield ErrNotFound.
func (l *Local) Resolve(token string) (string, error) {
	var st signedToken
	if err := l.codec.Decode(tokenName, token, &st); err != nil {
		return "", ErrNotFound
	}
	if st.Key == "" || l.now().Unix() > st.Exp {
		return "", ErrNotFound
	}
	return st.Key, nil
}

// ServeSigned streams the file granted by token, or 404s.
func (l *Local) ServeSigned(w http.ResponseWriter, r *http.Request, token string) {
	key, err := l.Resolve(token)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	f, err := l.fs.Open(key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		http.NotFound(w, r)
		return
	}

	name := path.Base(key)
	if ct, ok := allowedTypes[path.Ext(name)]; ok {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Cache-Control", "private, no-store")
	http.ServeContent(w, r, name, fi.ModTime(), f)
}
