// Package credentials keeps the API's session cookie across process restarts.
//
// The cookie is opaque: the API sets it on login and clears it on logout. Nothing here reads
// it to make authorization decisions.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

func (c storedCookie) expired(now time.Time) bool {
	return !c.Expires.IsZero() && !c.Expires.After(now)
}

// Jar is an http.CookieJar that mirrors the API host's cookies into a Store
type Jar struct {
	mu      sync.Mutex
	inner   *cookiejar.Jar
	base    *url.URL
	store   Store
	cookies map[string]storedCookie
	logger  zerolog.Logger
	now     func() time.Time
}

// NewJar returns a jar for the API at baseURL, preloaded with the cookies saved for its host
func NewJar(baseURL string, store Store, logger zerolog.Logger) (*Jar, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q", baseURL)
	}

	inner, _ := cookiejar.New(nil)

	j := &Jar{
		inner:   inner,
		base:    base,
		store:   store,
		cookies: make(map[string]storedCookie),
		logger:  logger,
		now:     time.Now,
	}

	if err := j.load(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Jar) load() error {
	data, err := j.store.Load(j.base.Host)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	var saved []storedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		j.logger.Warn().Err(err).Msg("Discarding unreadable stored cookies")
		return nil
	}

	now := j.now()
	restored := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		if c.expired(now) {
			continue
		}
		j.cookies[c.Name] = c
		restored = append(restored, &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires})
	}
	j.inner.SetCookies(j.base, restored)
	return nil
}

// SetCookies implements http.CookieJar
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.inner.SetCookies(u, cookies)
	if u.Host != j.base.Host {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	for _, c := range cookies {
		sc := storedCookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: c.Expires}
		if c.MaxAge > 0 {
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || sc.expired(now) {
			delete(j.cookies, c.Name)
			continue
		}
		j.cookies[c.Name] = sc
	}

	if err := j.persist(); err != nil {
		j.logger.Error().Err(err).Msg("Failed to persist session cookie")
	}
}

// Cookies implements http.CookieJar
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	return j.inner.Cookies(u)
}

func (j *Jar) persist() error {
	if len(j.cookies) == 0 {
		return j.store.Delete(j.base.Host)
	}

	list := make([]storedCookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		list = append(list, c)
	}
	sort.Slice(list, func(a, b int) bool { return list[a].Name < list[b].Name })

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}
	return j.store.Save(j.base.Host, data)
}

// Host is the API host whose cookies are persisted
func (j *Jar) Host() string {
	return j.base.Host
}

// Clear forgets every cookie of the API host, in memory and in the store
func (j *Jar) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	expired := make([]*http.Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		expired = append(expired, &http.Cookie{Name: c.Name, Path: c.Path, MaxAge: -1})
	}
	j.inner.SetCookies(j.base, expired)
	j.cookies = make(map[string]storedCookie)

	return j.store.Delete(j.base.Host)
}

// Expiry reports when the API session cookie stops being valid, as far as the client can
// tell. ok is false when no cookie carries an expiry.
func (j *Jar) Expiry() (expiry time.Time, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, c := range j.cookies {
		candidates := []time.Time{c.Expires}
		if exp, found := TokenExpiry(c.Value); found {
			candidates = append(candidates, exp)
		}
		for _, t := range candidates {
			if t.IsZero() {
				continue
			}
			if !ok || t.Before(expiry) {
				expiry, ok = t, true
			}
		}
	}
	return expiry, ok
}
