package risk

import (
	"context"
	"net"
	"time"

	"github.com/dropDatabas3/gatejohn/internal/authn"
	"github.com/dropDatabas3/gatejohn/internal/risk/history"
)

// IPAddress puntúa según cuántos logins históricos salieron del mismo
// bloque de red que el intento actual (/16 en v4, /64 en v6).
type IPAddress struct {
	History history.Store
	Window  time.Duration
}

func (c IPAddress) Name() string { return "ip_address" }

func (c IPAddress) Score(ctx context.Context, p authn.Principal, a Attempt) (float64, error) {
	cur := networkBlock(a.IP)
	if cur == "" {
		return MaxScore, nil
	}
	events, err := c.History.Events(ctx, p.ID, c.Window)
	if err != nil {
		return MaxScore, err
	}
	if len(events) == 0 {
		return MaxScore, nil
	}
	matches := 0
	for _, ev := range events {
		if networkBlock(ev.IP) == cur {
			matches++
		}
	}
	return clamp(1 - float64(matches)/float64(len(events))), nil
}

// networkBlock reduce una IP a su bloque ("" si no parsea).
func networkBlock(ip string) string {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}
	if v4 := parsed.To4(); v4 != nil {
		return (&net.IPNet{IP: v4.Mask(net.CIDRMask(16, 32)), Mask: net.CIDRMask(16, 32)}).String()
	}
	return (&net.IPNet{IP: parsed.Mask(net.CIDRMask(64, 128)), Mask: net.CIDRMask(64, 128)}).String()
}
