package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Gateway 数据服务的 HTTP 客户端
// 所有业务逻辑（预测生成、调整合成、平滑历史计算）都在服务端，
// 这里只负责参数化查询、错误归类和超时控制
type Gateway struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

// New 创建 Gateway，baseURL 末尾斜杠会被去除
// timeout 是单次请求的硬上限，超时对调用方表现为错误
func New(baseURL string, timeout time.Duration, log *logrus.Logger) *Gateway {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// get 发起 GET 请求并把响应体解码到 out
// 404 且 detail 符合“无数据”约定时返回 errNoData，由各查询方法归一为空结果
func (g *Gateway) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := g.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return g.do(req, out)
}

// post 发起 POST 请求，body 为 nil 时不带请求体
func (g *Gateway) post(ctx context.Context, path string, params url.Values, body, out any) error {
	endpoint := g.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return g.do(req, out)
}

func (g *Gateway) do(req *http.Request, out any) error {
	resp, err := g.http.Do(req)
	if err != nil {
		g.log.WithFields(logrus.Fields{
			"method": req.Method,
			"url":    req.URL.String(),
		}).WithError(err).Error("data service request failed")
		return &Error{Kind: KindTransport, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		if apiErr.Kind != KindEmptyResult {
			g.log.WithFields(logrus.Fields{
				"method": req.Method,
				"url":    req.URL.String(),
				"status": resp.StatusCode,
			}).Error(apiErr.Message)
		}
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindTransport, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}
