package checkout

import "sync"

// ScriptConfig is what the storefront needs to load the provider's button
// script: the publishable client id plus rendering parameters.
type ScriptConfig struct {
	ClientID   string `json:"clientId"`
	Currency   string `json:"currency"`
	Components string `json:"components"`
	Intent     string `json:"intent"`
}

// Bootstrap resolves the script config exactly once per process. A failed
// load is sticky: the error is returned on every later call and never retried
// automatically, matching the once-per-page-lifetime script guard.
type Bootstrap struct {
	load func() (ScriptConfig, error)
	once sync.Once
	cfg  ScriptConfig
	err  error
}

func NewBootstrap(load func() (ScriptConfig, error)) *Bootstrap {
	return &Bootstrap{load: load}
}

func (b *Bootstrap) Config() (ScriptConfig, error) {
	b.once.Do(func() {
		b.cfg, b.err = b.load()
	})
	return b.cfg, b.err
}
