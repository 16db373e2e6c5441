package zhttp

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Zhttp struct {
	client *http.Client
}

func New(timeout time.Duration, proxy string, skipVerify bool) (*Zhttp, error) {
	zhttp := &Zhttp{
		client: &http.Client{
			Timeout: timeout,
		},
	}

	t := http.DefaultTransport.(*http.Transport).Clone()

	if proxy != "" {
		p, err := url.Parse(proxy)
		if err != nil {
			return nil, err
		}
		t.Proxy = http.ProxyURL(p)
	}

	if skipVerify {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	zhttp.client.Transport = t

	return zhttp, nil
}

// Get fetches url, retrying transport failures up to retry times in total.
func (zhttp *Zhttp) Get(url string, headers map[string]string, retry int) (code int, body []byte, err error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("User-Agent", "logmerge/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if retry <= 0 {
		retry = 1
	}

	for retry > 0 {
		retry--
		code, body, err = zhttp.get(req)
		if err == nil {
			return code, body, err
		}
	}

	return
}

// Fetch is Get that also treats a non-2xx status as an error.
func (zhttp *Zhttp) Fetch(url string, headers map[string]string, retry int) ([]byte, error) {
	code, data, err := zhttp.Get(url, headers, retry)
	if err != nil {
		return nil, err
	}

	if code/100 != 2 {
		return nil, fmt.Errorf("http status code: %d", code)
	}

	return data, nil
}

func (zhttp *Zhttp) get(req *http.Request) (int, []byte, error) {
	resp, err := zhttp.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}
