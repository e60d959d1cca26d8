package server

import (
	"net/http"

	"feed/internal/biz"
	"feed/internal/conf"
	"feed/internal/service"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrorReply is the body of every failed request.
type ErrorReply struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Server, feed *service.FeedService, logger log.Logger) *khttp.Server {
	var opts = []khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
		khttp.ErrorEncoder(encodeError),
	}
	if c != nil && c.HTTP != nil {
		if c.HTTP.Network != "" {
			opts = append(opts, khttp.Network(c.HTTP.Network))
		}
		if c.HTTP.Addr != "" {
			opts = append(opts, khttp.Address(c.HTTP.Addr))
		}
		if c.HTTP.Timeout > 0 {
			opts = append(opts, khttp.Timeout(c.HTTP.Timeout.AsDuration()))
		}
	}
	srv := khttp.NewServer(opts...)
	srv.Handle("/metrics", promhttp.Handler())
	feed.RegisterHTTP(srv)
	return srv
}

// encodeError writes err as {"error", "detail"} with the status of its kratos code.
// Errors that are not kratos errors keep their text out of the message.
func encodeError(w http.ResponseWriter, r *http.Request, err error) {
	se := errors.FromError(err)
	reply := &ErrorReply{
		Error:  se.Message,
		Detail: se.Metadata[biz.MetadataDetail],
	}
	var ke *errors.Error
	if !errors.As(err, &ke) {
		reply = &ErrorReply{Error: "internal error", Detail: err.Error()}
	}
	codec, _ := khttp.CodecForRequest(r, "Accept")
	body, merr := codec.Marshal(reply)
	if merr != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/"+codec.Name())
	w.WriteHeader(int(se.Code))
	_, _ = w.Write(body)
}
