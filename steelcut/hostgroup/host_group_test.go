package hostgroup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelcutops/snapstate/steelcut/host"
)

func newHosts(t *testing.T, names ...string) []*host.Host {
	t.Helper()
	var hosts []*host.Host
	for _, name := range names {
		h, err := host.NewHost(name)
		require.NoError(t, err)
		hosts = append(hosts, h)
	}
	return hosts
}

func TestAddHostDeduplicates(t *testing.T) {
	hg := NewHostGroup()
	for _, h := range newHosts(t, "web2", "web1", "web2") {
		hg.AddHost(h)
	}

	assert.Equal(t, []string{"web1", "web2"}, hg.Hostnames())
	assert.True(t, hg.HasHost("web1"))
	assert.False(t, hg.HasHost("db1"))
}

func TestApplyVisitsEveryHost(t *testing.T) {
	hg := NewHostGroup(newHosts(t, "a", "b", "c")...)

	var mu sync.Mutex
	var seen []string
	err := hg.Apply(context.Background(), 2, func(ctx context.Context, h *host.Host) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, h.Hostname)
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, seen)
}

func TestApplyBoundsConcurrency(t *testing.T) {
	hg := NewHostGroup(newHosts(t, "a", "b", "c", "d", "e", "f")...)

	var running, peak int32
	err := hg.Apply(context.Background(), 2, func(ctx context.Context, h *host.Host) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestApplyAggregatesErrors(t *testing.T) {
	hg := NewHostGroup(newHosts(t, "a", "b", "c")...)

	err := hg.Apply(context.Background(), 0, func(ctx context.Context, h *host.Host) error {
		if h.Hostname == "b" {
			return nil
		}
		return errors.New("failed to install hello")
	})
	require.Error(t, err)

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.Contains(t, err.Error(), "host a: failed to install hello")
	assert.Contains(t, err.Error(), "host c: failed to install hello")
}
