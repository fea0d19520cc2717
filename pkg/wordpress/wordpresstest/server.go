// Package wordpresstest provides a canned XML-RPC endpoint for tests.
package wordpresstest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
)

var methodNamePattern = regexp.MustCompile(`<methodName>([^<]+)</methodName>`)

// Server answers XML-RPC calls with fixed response bodies per method.
// Unknown methods get a fault.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]string
	calls     []Call
}

// Call is one recorded request.
type Call struct {
	Method string
	Body   string
}

// NewServer starts a server. Close it when done.
func NewServer() *Server {
	s := &Server{responses: map[string]string{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Respond sets the raw <methodResponse> document returned for method.
func (s *Server) Respond(method, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[method] = body
}

// Calls returns recorded calls for method, or all calls when method is "".
func (s *Server) Calls(method string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	method := ""
	if m := methodNamePattern.FindSubmatch(body); m != nil {
		method = string(m[1])
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Body: string(body)})
	resp, ok := s.responses[method]
	s.mu.Unlock()

	if !ok {
		resp = Fault(-32601, "server error. requested method "+method+" does not exist.")
	}
	w.Header().Set("Content-Type", "text/xml")
	io.WriteString(w, resp)
}

// Fault builds a fault response.
func Fault(code int, message string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<methodResponse><fault><value><struct>
<member><name>faultCode</name><value><int>%d</int></value></member>
<member><name>faultString</name><value><string>%s</string></value></member>
</struct></value></fault></methodResponse>`, code, message)
}

// StringResponse wraps a single string value.
func StringResponse(v string) string {
	return `<?xml version="1.0"?><methodResponse><params><param><value><string>` + v +
		`</string></value></param></params></methodResponse>`
}

// PostSpec describes one post in a wp.getPosts response.
type PostSpec struct {
	ID        string
	Title     string
	ProductID string
}

// PostsResponse builds a wp.getPosts response.
func PostsResponse(posts ...PostSpec) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><methodResponse><params><param><value><array><data>`)
	for _, p := range posts {
		sb.WriteString(`<value><struct>`)
		sb.WriteString(member("post_id", p.ID))
		sb.WriteString(member("post_title", p.Title))
		sb.WriteString(member("post_status", "publish"))
		sb.WriteString(`<member><name>custom_fields</name><value><array><data>`)
		if p.ProductID != "" {
			sb.WriteString(`<value><struct>`)
			sb.WriteString(member("id", "1"))
			sb.WriteString(member("key", "product_id"))
			sb.WriteString(member("value", p.ProductID))
			sb.WriteString(`</struct></value>`)
		}
		sb.WriteString(`</data></array></value></member>`)
		sb.WriteString(`</struct></value>`)
	}
	sb.WriteString(`</data></array></value></param></params></methodResponse>`)
	return sb.String()
}

// UploadResponse builds a wp.uploadFile response.
func UploadResponse(id, url string) string {
	return `<?xml version="1.0"?><methodResponse><params><param><value><struct>` +
		member("attachment_id", id) +
		member("id", id) +
		member("file", "image.jpg") +
		member("url", url) +
		member("type", "image/jpeg") +
		`</struct></value></param></params></methodResponse>`
}

func member(name, value string) string {
	return `<member><name>` + name + `</name><value><string>` + value + `</string></value></member>`
}
