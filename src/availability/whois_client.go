// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package availability

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/likexian/whois"
	"golang.org/x/net/proxy"
)

const ianaWhoisServer = "whois.iana.org"

// fallbackWhoisServers cover TLDs that the whois library sometimes fails
// to resolve a server for.
var fallbackWhoisServers = map[string]string{
	"info": "whois.nic.info",
	"biz":  "whois.nic.biz",
	"mobi": "whois.dotmobi.net",
}

// WhoisClient sends one WHOIS query and returns the raw response text.
//
// Implementations must return once ctx is done. The default client is
// built on github.com/likexian/whois; tests and callers with their own
// transport can supply another one via [WithWhoisClient].
type WhoisClient interface {
	Query(ctx context.Context, domain string) (string, error)
}

// WhoisClientFunc adapts a function to [WhoisClient].
type WhoisClientFunc func(ctx context.Context, domain string) (string, error)

// Query calls f(ctx, domain).
func (f WhoisClientFunc) Query(ctx context.Context, domain string) (string, error) {
	return f(ctx, domain)
}

// libWhoisClient is the default [WhoisClient].
type libWhoisClient struct {
	server string // fixed host[:port]; empty discovers the registry server
}

// NewWhoisClient returns the default port-43 WHOIS client. Connections go
// through the proxy configured in the environment (ALL_PROXY / NO_PROXY),
// or directly when none is set.
func NewWhoisClient() WhoisClient {
	return &libWhoisClient{}
}

// NewWhoisServerClient is like [NewWhoisClient] but sends every query to
// server (host or host:port), following its referrals.
func NewWhoisServerClient(server string) WhoisClient {
	return &libWhoisClient{server: server}
}

// Query runs the lookup in its own goroutine and races it against ctx.
// The underlying connection inherits the remaining ctx deadline as its
// timeout, so an abandoned query is torn down by the library shortly after.
func (c *libWhoisClient) Query(ctx context.Context, domain string) (string, error) {
	timeout := defaultWhoisTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = max(time.Until(deadline), time.Millisecond)
	}
	client := whois.NewClient().
		SetTimeout(timeout).
		SetDisableStats(true).
		SetDialer(proxy.FromEnvironmentUsing(&net.Dialer{Timeout: timeout}))

	type result struct {
		data string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		data, err := c.lookup(client, domain)
		ch <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.data, res.err
	}
}

// lookup queries the fixed or registry WHOIS server, falling back to a static
// server map and then to the IANA referral when the library knows no
// server for the TLD.
func (c *libWhoisClient) lookup(client *whois.Client, domain string) (string, error) {
	if c.server != "" {
		return client.Whois(domain, c.server)
	}

	raw, err := client.Whois(domain)
	if err == nil || !strings.Contains(err.Error(), "no whois server") {
		return raw, err
	}

	if server, ok := fallbackWhoisServers[tldOf(domain)]; ok {
		if raw, ferr := client.Whois(domain, server); ferr == nil && raw != "" {
			return raw, nil
		}
	}

	ianaRaw, ianaErr := client.Whois(domain, ianaWhoisServer)
	if ianaErr != nil {
		return "", fmt.Errorf("%w (IANA referral: %v)", err, ianaErr)
	}
	server := referralServer(ianaRaw)
	if server == "" {
		return "", err
	}
	return client.Whois(domain, server)
}

// referralServer extracts the "whois:" or "refer:" server from an IANA
// response.
func referralServer(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		if !strings.HasPrefix(lower, "whois:") && !strings.HasPrefix(lower, "refer:") {
			continue
		}
		if _, server, ok := strings.Cut(line, ":"); ok {
			if server = strings.TrimSpace(server); server != "" {
				return server
			}
		}
	}
	return ""
}
