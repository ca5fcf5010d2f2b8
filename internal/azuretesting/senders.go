// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package azuretesting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// MockSender is a policy.Transporter that replays canned responses,
// optionally asserting that the request path matches a pattern.
type MockSender struct {
	// PathPattern, if non-empty, is a regular expression that must
	// match the request URL path.
	PathPattern string

	responses []*http.Response
}

// AppendResponse adds a response to the end of the queue.
func (s *MockSender) AppendResponse(resp *http.Response) {
	s.responses = append(s.responses, resp)
}

// AppendAndRepeatResponse adds a response n times to the queue.
func (s *MockSender) AppendAndRepeatResponse(resp *http.Response, n int) {
	for i := 0; i < n; i++ {
		s.AppendResponse(resp)
	}
}

// Do implements policy.Transporter.
func (s *MockSender) Do(req *http.Request) (*http.Response, error) {
	if s.PathPattern != "" {
		matched, err := regexp.MatchString(s.PathPattern, req.URL.Path)
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, fmt.Errorf(
				"request path %q did not match pattern %q",
				req.URL.Path, s.PathPattern,
			)
		}
	}
	if len(s.responses) == 0 {
		return nil, fmt.Errorf("no response for %q", req.URL)
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	resp.Request = req
	return resp, nil
}

// NewSenderWithValue returns a MockSender with a 200 response whose
// body is the JSON encoding of v.
func NewSenderWithValue(v interface{}) *MockSender {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	sender := &MockSender{}
	sender.AppendResponse(NewResponseWithBodyAndStatus(NewBody(string(data)), http.StatusOK, "OK"))
	return sender
}

// Senders is a queue of transporters; each request is handed to the
// sender at the head of the queue, which is then popped.
type Senders []policy.Transporter

// Do implements policy.Transporter.
func (s *Senders) Do(req *http.Request) (*http.Response, error) {
	if len(*s) == 0 {
		return nil, fmt.Errorf("no sender for %q", req.URL)
	}
	sender := (*s)[0]
	if ms, ok := sender.(*MockSender); !ok || len(ms.responses) <= 1 {
		*s = (*s)[1:]
	}
	return sender.Do(req)
}

// SerialSender is a policy.Transporter that locks around each request,
// so a Senders queue can be shared by concurrent clients.
type SerialSender struct {
	mu     sync.Mutex
	sender policy.Transporter
}

// NewSerialSender wraps sender for serialised access.
func NewSerialSender(sender policy.Transporter) *SerialSender {
	return &SerialSender{sender: sender}
}

// Do implements policy.Transporter.
func (s *SerialSender) Do(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sender.Do(req)
}

// RequestRecorder wraps transport so each request seen is appended
// to requests. The recorded request has its body replayed, since the
// transport will have consumed it.
func RequestRecorder(requests *[]*http.Request, transport policy.Transporter) policy.Transporter {
	return &requestRecorder{requests: requests, transport: transport}
}

type requestRecorder struct {
	mu        sync.Mutex
	requests  *[]*http.Request
	transport policy.Transporter
}

// Do implements policy.Transporter.
func (r *requestRecorder) Do(req *http.Request) (*http.Response, error) {
	var body bytes.Buffer
	if req.Body != nil {
		if _, err := body.ReadFrom(req.Body); err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body.Bytes()))
	}
	reqCopy := *req
	reqCopy.Body = io.NopCloser(bytes.NewReader(body.Bytes()))
	r.mu.Lock()
	*r.requests = append(*r.requests, &reqCopy)
	r.mu.Unlock()
	return r.transport.Do(req)
}

// NewBody returns an io.ReadCloser over the given content.
func NewBody(content string) io.ReadCloser {
	return io.NopCloser(bytes.NewReader([]byte(content)))
}

// NewResponseWithBodyAndStatus assembles an *http.Response for replay.
func NewResponseWithBodyAndStatus(body io.ReadCloser, status int, statusText string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, statusText),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       body,
	}
}

// NewResponseWithStatus returns a response with an empty body.
func NewResponseWithStatus(status int, statusText string) *http.Response {
	return NewResponseWithBodyAndStatus(NewBody(""), status, statusText)
}
