package authsvc

import (
	"context"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pluce/openlink/internal/olerr"
	"github.com/pluce/openlink/model"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// NetworkRegistry is the auth service's live view of which networks it can
// issue tokens for: the env-configured set from FromEnv (fixed for the
// process's lifetime) layered over an optional set loaded from an on-disk
// YAML file that can be hot reloaded. Env entries always win over file
// entries for the same network, so an operator can't accidentally shadow a
// deliberately configured provider by editing the file.
type NetworkRegistry struct {
	env  map[model.NetworkId]OidcProviderConfig
	mu   sync.RWMutex
	file map[model.NetworkId]OidcProviderConfig
}

// NewNetworkRegistry builds a NetworkRegistry from the env-sourced networks;
// the file layer starts empty until a NetworkRegistryWatcher loads one.
func NewNetworkRegistry(env map[model.NetworkId]OidcProviderConfig) *NetworkRegistry {
	return &NetworkRegistry{env: env, file: map[model.NetworkId]OidcProviderConfig{}}
}

// ProviderFor looks up the OIDC provider configured for network, checking
// the env layer first.
func (r *NetworkRegistry) ProviderFor(network model.NetworkId) (OidcProviderConfig, bool) {
	if p, ok := r.env[network]; ok {
		return p, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.file[network]
	return p, ok
}

// Networks lists every network currently known, env and file layers
// combined, for startup logging.
func (r *NetworkRegistry) Networks() []model.NetworkId {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[model.NetworkId]struct{}, len(r.env)+len(r.file))
	for n := range r.env {
		seen[n] = struct{}{}
	}
	for n := range r.file {
		seen[n] = struct{}{}
	}
	out := make([]model.NetworkId, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	return out
}

func (r *NetworkRegistry) setFileNetworks(networks map[model.NetworkId]OidcProviderConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.file = networks
}

// networkRegistryFileDSL is the on-disk shape of the optional network
// registry file:
//
//	networks:
//	  vatsim:
//	    token_url: https://auth.vatsim.net/oauth/token
type networkRegistryFileDSL struct {
	Networks map[string]struct {
		TokenURL string `yaml:"token_url"`
	} `yaml:"networks"`
}

// loadNetworkRegistryFile reads and parses path into the provider map it
// describes.
func loadNetworkRegistryFile(path string) (map[model.NetworkId]OidcProviderConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, olerr.Configuration("read network registry file", err)
	}
	var dsl networkRegistryFileDSL
	if err := yaml.Unmarshal(data, &dsl); err != nil {
		return nil, olerr.Configuration("parse network registry file", err)
	}
	networks := make(map[model.NetworkId]OidcProviderConfig, len(dsl.Networks))
	for name, entry := range dsl.Networks {
		networks[model.NetworkId(name)] = OidcProviderConfig{TokenURL: entry.TokenURL}
	}
	return networks, nil
}

// NetworkRegistryWatcher watches an on-disk YAML network registry file and
// reloads a NetworkRegistry's file layer on every change, so an operator can
// add or repoint an OIDC network without restarting the process.
type NetworkRegistryWatcher struct {
	path     string
	registry *NetworkRegistry
	watcher  *fsnotify.Watcher
}

// NewNetworkRegistryWatcher creates a watcher for path. Start must be called
// to begin watching; it performs the initial load itself.
func NewNetworkRegistryWatcher(path string, registry *NetworkRegistry) (*NetworkRegistryWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, olerr.Configuration("create network registry file watcher", err)
	}
	return &NetworkRegistryWatcher{path: path, registry: registry, watcher: w}, nil
}

// Start loads the file once, then blocks watching it until ctx is
// cancelled. An error from the initial load is returned; reload errors
// after that are logged and the previous contents are kept, since a
// transient bad edit shouldn't take the process down.
func (w *NetworkRegistryWatcher) Start(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.reload(); err != nil {
		return err
	}
	if err := w.watcher.Add(w.path); err != nil {
		return olerr.Configuration("watch network registry file", err)
	}
	log.Info().Str("path", w.path).Msg("watching network registry file")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.reload(); err != nil {
				log.Warn().Err(err).Str("path", w.path).Msg("network registry file reload failed, keeping previous contents")
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("network registry file watcher error")
		}
	}
}

func (w *NetworkRegistryWatcher) reload() error {
	networks, err := loadNetworkRegistryFile(w.path)
	if err != nil {
		return err
	}
	w.registry.setFileNetworks(networks)
	log.Info().Int("count", len(networks)).Str("path", w.path).Msg("network registry file loaded")
	return nil
}
