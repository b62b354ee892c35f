// Package arcgis queries the subregions layer of the Esri Colombia open data
// MapServer.
package arcgis

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	utls "github.com/refraction-networking/utls"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rendis/subregiones/internal/model"
)

const (
	queryURL = "https://ags.esri.co/arcgis/rest/services/DatosAbiertos/SUBREGIONES_PROVINCIAS_2012/MapServer/0/query"

	whereAll  = "1=1"
	outFields = "COD_SUBREGION,NOM_SUBREGION,COD_DEPTO"
	outSR     = "4326"
	format    = "json"

	userAgent = "subregiones/0.1 (subregion map viewer)"
)

// Options tune the transport. None of them change what is queried.
type Options struct {
	// Timeout bounds the whole request. Zero means no timeout.
	Timeout time.Duration
	// ProxyURL routes the request through an HTTP/SOCKS5 proxy.
	ProxyURL string
	// ChromeTLS presents a Chrome ClientHello via uTLS. Ignored with a proxy.
	ChromeTLS bool
}

type Client struct {
	http    *http.Client
	baseURL string
	logger  *zap.Logger
}

func NewClient(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}

	if opts.ChromeTLS {
		transport.DialTLSContext = chromeDialer(dialer)
	}

	if opts.ProxyURL != "" {
		proxyParsed, err := url.Parse(opts.ProxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyParsed)
			// The proxy owns the connection, so fall back to standard TLS.
			transport.DialTLSContext = nil
			transport.TLSClientConfig = &tls.Config{}
		} else {
			logger.Warn("ignoring invalid proxy url", zap.String("proxy", opts.ProxyURL), zap.Error(err))
		}
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		baseURL: queryURL,
		logger:  logger,
	}
}

// chromeDialer builds a TLS dialer that mimics Chrome with HTTP/1.1 ALPN.
func chromeDialer(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}

		spec, err := utls.UTLSIdToSpec(utls.HelloChrome_Auto)
		if err != nil {
			conn.Close()
			return nil, err
		}
		for i, ext := range spec.Extensions {
			if alpn, ok := ext.(*utls.ALPNExtension); ok {
				alpn.AlpnProtocols = []string{"http/1.1"}
				spec.Extensions[i] = alpn
				break
			}
		}

		tlsConn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloCustom)
		if err := tlsConn.ApplyPreset(&spec); err != nil {
			conn.Close()
			return nil, err
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		return tlsConn, nil
	}
}

// QueryURL returns the full request URL.
func (c *Client) QueryURL() string {
	params := url.Values{}
	params.Set("where", whereAll)
	params.Set("outFields", outFields)
	params.Set("outSR", outSR)
	params.Set("f", format)
	return c.baseURL + "?" + params.Encode()
}

// Query fetches every feature of the layer in one request.
func (c *Client) Query(ctx context.Context) ([]model.Feature, error) {
	reqURL := c.QueryURL()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &LoadFailure{Op: "build request", Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &LoadFailure{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &LoadFailure{Op: "fetch", Err: eris.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadFailure{Op: "read body", Err: err}
	}

	qr, err := ParseQueryResponse(body)
	if err != nil {
		return nil, err
	}

	if qr.ExceededTransferLimit {
		c.logger.Warn("layer exceeded transfer limit, result is truncated",
			zap.Int("features", len(qr.Features)))
	}
	c.logger.Info("subregions fetched",
		zap.Int("features", len(qr.Features)),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))

	return qr.Features, nil
}
