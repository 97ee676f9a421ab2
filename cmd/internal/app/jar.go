package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
)

// cookieKey holds the API origin's cookies in the durable tier.
const cookieKey = "hiring.cookies"

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// tierJar is a cookie jar mirrored into a credential tier, so the refresh
// cookie set by one CLI run is sent by the next. Only cookies visible at the
// API origin root are persisted.
type tierJar struct {
	log  *slog.Logger
	jar  *cookiejar.Jar
	tier credential.Tier
	root *url.URL

	mu sync.Mutex
}

func newTierJar(ctx context.Context, log *slog.Logger, tier credential.Tier, apiBase string) (*tierJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(apiBase)
	if err != nil {
		return nil, err
	}
	j := &tierJar{log: log, jar: jar, tier: tier, root: &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}}

	raw, ok, err := tier.Get(ctx, cookieKey)
	if err != nil {
		log.Warn("cookies.load.fail", "tier", tier.Name(), "err", err)
		return j, nil
	}
	if !ok || raw == "" {
		return j, nil
	}
	var saved []savedCookie
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		log.Warn("cookies.load.corrupt", "tier", tier.Name(), "err", err)
		return j, nil
	}
	cs := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		cs = append(cs, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(j.root, cs)
	return j, nil
}

func (j *tierJar) Cookies(u *url.URL) []*http.Cookie { return j.jar.Cookies(u) }

func (j *tierJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)
	if u.Host != j.root.Host {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	current := j.jar.Cookies(j.root)
	if len(current) == 0 {
		if err := j.tier.Delete(ctx, cookieKey); err != nil {
			j.log.Warn("cookies.clear.fail", "tier", j.tier.Name(), "err", err)
		}
		return
	}
	saved := make([]savedCookie, 0, len(current))
	for _, c := range current {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}
	b, err := json.Marshal(saved)
	if err != nil {
		return
	}
	if err := j.tier.Set(ctx, cookieKey, string(b)); err != nil {
		j.log.Warn("cookies.save.fail", "tier", j.tier.Name(), "err", err)
	}
}
