package security

import (
	"context"
	"crypto/tls"
	"math"
	"net"
	"net/url"
	"time"
)

// Certificate states.
const (
	StatusValid       = "valid"
	StatusExpiring    = "expiring"
	StatusExpired     = "expired"
	StatusUnreachable = "unreachable"
)

// expiringWithin is the remaining lifetime below which a cert is expiring.
const expiringWithin = 30 * 24 * time.Hour

// CertStatus describes the leaf certificate served by a feed endpoint.
type CertStatus struct {
	Endpoint string `json:"endpoint"`
	Status   string `json:"status"`
	DaysLeft int    `json:"days_left"`
	Issuer   string `json:"issuer,omitempty"`
	NotAfter string `json:"not_after,omitempty"` // RFC3339
	Error    string `json:"error,omitempty"`
}

// Check dials the TLS endpoint and reports on its leaf certificate.
//
// Returns nil for non-HTTPS endpoints. The dial is bounded by 10 seconds.
func Check(ctx context.Context, endpoint string, insecure bool) *CertStatus {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme != "https" {
		return nil
	}

	cs := &CertStatus{Endpoint: endpoint}

	host := u.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "443")
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{},
		Config: &tls.Config{
			ServerName:         u.Hostname(),
			InsecureSkipVerify: insecure, //nolint:gosec // user-configured
		},
	}

	netConn, err := dialer.DialContext(dialCtx, "tcp", host)
	if err != nil {
		cs.Status = StatusUnreachable
		cs.Error = err.Error()
		return cs
	}
	conn := netConn.(*tls.Conn)
	defer conn.Close()

	peerCerts := conn.ConnectionState().PeerCertificates
	if len(peerCerts) == 0 {
		cs.Status = StatusUnreachable
		return cs
	}

	leaf := peerCerts[0]
	left := leaf.NotAfter.Sub(time.Now())

	cs.NotAfter = leaf.NotAfter.UTC().Format(time.RFC3339)
	cs.Issuer = leaf.Issuer.CommonName
	cs.DaysLeft = int(math.Floor(left.Hours() / 24))
	cs.Status = statusFor(left)
	return cs
}

func statusFor(left time.Duration) string {
	switch {
	case left <= 0:
		return StatusExpired
	case left <= expiringWithin:
		return StatusExpiring
	default:
		return StatusValid
	}
}
