// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lxd

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/NVIDIA/lxd-inventory/pkg/config"
	"github.com/NVIDIA/lxd-inventory/pkg/defaults"
)

// unixBaseURL is the placeholder host used for requests over the socket.
const unixBaseURL = "http://unix.socket"

// newTransport builds the HTTP transport for ep and returns the base URL
// requests are issued against.
func newTransport(ep *config.Endpoint) (*http.Transport, string, error) {
	dialer := &net.Dialer{
		Timeout:   defaults.HTTPConnectTimeout,
		KeepAlive: defaults.HTTPKeepAlive,
	}
	tr := &http.Transport{
		TLSHandshakeTimeout:   defaults.HTTPTLSHandshakeTimeout,
		ResponseHeaderTimeout: defaults.HTTPResponseHeaderTimeout,
		IdleConnTimeout:       defaults.HTTPIdleConnTimeout,
		MaxIdleConnsPerHost:   defaults.MaxConcurrentEndpoints,
	}

	switch ep.Scheme {
	case config.SchemeUnix:
		path := ep.Path
		tr.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, "unix", path)
		}
		return tr, unixBaseURL, nil

	case config.SchemeHTTPS:
		tlsConfig, err := newTLSConfig(ep)
		if err != nil {
			return nil, "", err
		}
		tr.Proxy = http.ProxyFromEnvironment
		tr.DialContext = dialer.DialContext
		tr.TLSClientConfig = tlsConfig
		tr.ForceAttemptHTTP2 = true
		return tr, ep.URL, nil

	default:
		return nil, "", fmt.Errorf("scheme %q is not served over HTTP", ep.Scheme)
	}
}

// newTLSConfig loads the client certificate and CA bundle of ep.
// Verification is skipped only when VerifySSL is unset and no CA bundle
// is configured; a CA bundle always verifies against that bundle.
func newTLSConfig(ep *config.Endpoint) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		//nolint:gosec // verify_ssl: false without a CA is an explicit user choice, LXD ships self-signed certificates
		InsecureSkipVerify: !ep.VerifySSL && ep.CACertPath == "",
	}

	if ep.CertPath != "" {
		cert, err := tls.LoadX509KeyPair(ep.CertPath, ep.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	if ep.CACertPath != "" {
		pem, err := os.ReadFile(ep.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", ep.CACertPath)
		}
		cfg.RootCAs = pool
	}
	return cfg, nil
}
