package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"htmx-todos/internal/model"
	"htmx-todos/internal/render"
)

type TodoService interface {
	List(ctx context.Context) ([]model.Todo, error)
	Add(ctx context.Context, content string) (model.Todo, error)
	Toggle(ctx context.Context, id uint64) (model.Todo, error)
	Remove(ctx context.Context, id uint64) error
	Ready(ctx context.Context) error
}

type Options struct {
	// StaticDir is served under /static/. Empty disables static files.
	StaticDir      string
	RequestTimeout time.Duration
	Logger         *log.Logger
	Page           render.PageData
}

type Server struct {
	service TodoService
	logger  *log.Logger
	page    render.PageData
	router  *mux.Router
	handler http.Handler
}

func NewServer(service TodoService, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 3 * time.Second
	}
	if opts.Page == (render.PageData{}) {
		opts.Page = render.DefaultPageData()
	}

	srv := &Server{
		service: service,
		logger:  opts.Logger,
		page:    opts.Page,
		router:  mux.NewRouter(),
	}

	r := srv.router
	r.Methods(http.MethodGet).Path("/").HandlerFunc(srv.handlePage)
	r.Methods(http.MethodPost).Path("/clicked").HandlerFunc(srv.handleClicked)

	r.Methods(http.MethodGet).Path("/todos").HandlerFunc(srv.handleListTodos)
	r.Methods(http.MethodPost).Path("/todos").HandlerFunc(srv.handleCreateTodo)
	r.Methods(http.MethodPost).Path("/todos/toggle/{id:[0-9]+}").HandlerFunc(srv.handleToggleTodo)
	r.Methods(http.MethodDelete).Path("/todos/{id:[0-9]+}").HandlerFunc(srv.handleDeleteTodo)

	r.Methods(http.MethodGet).Path("/healthz").Handler(HealthzHandler())
	r.Methods(http.MethodGet).Path("/readyz").Handler(ReadyzHandler(service))

	if opts.StaticDir != "" {
		r.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))),
		)
	}

	srv.handler = WithRequestID(
		Logging(srv.logger)(
			Timeout(opts.RequestTimeout)(r),
		),
	)
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
