package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/tartampluch/go-contacts/internal/config"
)

// Import source failures. Errors returned by HTTPFetcher and Importer wrap
// at most one of these.
var (
	ErrSourceAuth     = errors.New(config.ErrSourceAuth)
	ErrSourceNotFound = errors.New(config.ErrSourceNotFound)
	ErrNotVCard       = errors.New(config.ErrNotVCard)
	ErrSourceTooLarge = errors.New(config.ErrSourceTooLarge)
)

const vcardBegin = "BEGIN:VCARD"

// Media types a vCard export may be served as. Servers that do not know the
// .vcf extension fall back to the generic ones.
var vcardMediaTypes = map[string]bool{
	"text/vcard":               true,
	"text/x-vcard":             true,
	"text/directory":           true,
	"text/plain":               true,
	"application/octet-stream": true,
}

// VCardFetcher retrieves a remote vCard collection for import.
// Tests substitute it to avoid the network.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads a vCard export over HTTP(S), optionally with basic
// auth. MaxBytes caps the body; zero means config.MaxImportSize.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewHTTPFetcher returns a fetcher with the default timeout and size cap.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{Timeout: config.HTTPTimeout},
	}
}

// Fetch requests targetURL and returns the body once the response looks like
// vCard data. Rejected credentials, missing collections and HTML answers
// (typically a login page) are reported as ErrSourceAuth, ErrSourceNotFound
// and ErrNotVCard.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, redactURL(u)),
	)
	log.Debug(config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestCreate, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeAcceptVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}

	if err := checkVCardResponse(resp); err != nil {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus,
			slog.Int(config.LogKeyStatus, resp.StatusCode),
			slog.String(config.LogKeyError, err.Error()),
		)
		return nil, err
	}

	log.Info(config.MsgFetchDownload, slog.Int64(config.LogKeyLength, resp.ContentLength))
	return openVCardStream(resp.Body, f.MaxBytes)
}

// checkVCardResponse maps the status and content type onto import errors.
func checkVCardResponse(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrSourceAuth, resp.Status)
	case http.StatusNotFound, http.StatusGone:
		return fmt.Errorf("%w: %s", ErrSourceNotFound, resp.Status)
	default:
		return fmt.Errorf("%s: %s", config.ErrHTTPStatus, resp.Status)
	}

	ct := resp.Header.Get(config.HeaderContentType)
	if ct == "" {
		return nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil || !vcardMediaTypes[mt] {
		return fmt.Errorf("%w: %s", ErrNotVCard, ct)
	}
	return nil
}

// redactURL drops credentials and the query string, which may carry tokens.
func redactURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}

// openVCardStream checks that rc starts with a vCard and caps how much of it
// can be read. Leading whitespace and a byte order mark are skipped. An empty
// stream is accepted and yields no contacts. rc is closed on failure.
func openVCardStream(rc io.ReadCloser, maxBytes int64) (io.ReadCloser, error) {
	if maxBytes <= 0 {
		maxBytes = config.MaxImportSize
	}
	br := bufio.NewReader(&cappedReader{r: rc, left: maxBytes})
	if err := sniffVCard(br); err != nil {
		_ = rc.Close()
		return nil, err
	}
	return &vcardStream{Reader: br, Closer: rc}, nil
}

func sniffVCard(br *bufio.Reader) error {
	for {
		r, _, err := br.ReadRune()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if r != '\uFEFF' && !unicode.IsSpace(r) {
			_ = br.UnreadRune()
			break
		}
	}

	head, err := br.Peek(len(vcardBegin))
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if !strings.EqualFold(string(head), vcardBegin) {
		return ErrNotVCard
	}
	return nil
}

// vcardStream reads through the sniffing buffer and closes the source.
type vcardStream struct {
	io.Reader
	io.Closer
}

// cappedReader fails with ErrSourceTooLarge instead of silently truncating.
type cappedReader struct {
	r    io.Reader
	left int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.left <= 0 {
		var one [1]byte
		n, err := c.r.Read(one[:])
		if n > 0 {
			return 0, ErrSourceTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	return n, err
}
