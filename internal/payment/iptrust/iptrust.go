package iptrust

import (
	"net"

	"go.uber.org/zap"
)

// Filter decides whether a webhook source address belongs to the payment
// provider. It fails closed: unparseable addresses, an empty allowlist and
// any address outside the configured networks are all untrusted.
type Filter struct {
	networks []*net.IPNet
	relaxed  bool
	log      *zap.Logger
}

// New builds a Filter from CIDR strings. Entries that do not parse are
// skipped with a warning rather than aborting startup.
func New(cidrs []string, relaxed bool, log *zap.Logger) *Filter {
	f := &Filter{
		relaxed: relaxed,
		log:     log.Named("payment.iptrust"),
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			f.log.Warn("skipping invalid trusted network", zap.String("cidr", cidr), zap.Error(err))
			continue
		}
		f.networks = append(f.networks, network)
	}
	return f
}

// IsTrusted reports whether addr is inside one of the provider networks.
// In relaxed mode loopback and private addresses are also accepted, which
// lets local tunnels deliver webhooks during development; every such
// acceptance is logged.
func (f *Filter) IsTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		f.log.Warn("webhook source address did not parse", zap.String("addr", addr))
		return false
	}

	for _, network := range f.networks {
		if network.Contains(ip) {
			f.log.Debug("webhook source matched provider network",
				zap.String("addr", addr),
				zap.String("network", network.String()))
			return true
		}
	}

	if f.relaxed && (ip.IsLoopback() || ip.IsPrivate()) {
		f.log.Warn("accepting local webhook source in relaxed mode", zap.String("addr", addr))
		return true
	}

	return false
}
