package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"htmx-todos/internal/model"
	"htmx-todos/internal/render"
	"htmx-todos/internal/todo"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.writeHTML(w, r, http.StatusOK, func(out io.Writer) error {
		return render.Page(out, s.page)
	})
}

func (s *Server) handleClicked(w http.ResponseWriter, r *http.Request) {
	s.writeHTML(w, r, http.StatusOK, render.Clicked)
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.service.List(r.Context())
	if err != nil {
		s.internalError(w, r, "list todos", err)
		return
	}

	s.writeHTML(w, r, http.StatusOK, func(out io.Writer) error {
		return render.List(out, todos)
	})
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	content, err := decodeContent(r)
	if err != nil {
		switch {
		case errors.Is(err, errBodyTooLarge):
			s.writeError(w, r, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, errUnsupportedMediaType):
			s.writeError(w, r, http.StatusUnsupportedMediaType, err.Error())
		default:
			s.writeError(w, r, http.StatusBadRequest, err.Error())
		}
		return
	}

	created, err := s.service.Add(r.Context(), content)
	if err != nil {
		if errors.Is(err, todo.ErrEmptyContent) {
			s.writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		s.internalError(w, r, "add todo", err)
		return
	}

	s.writeHTML(w, r, http.StatusOK, func(out io.Writer) error {
		return render.Item(out, created)
	})
}

func (s *Server) handleToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	updated, err := s.service.Toggle(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.writeError(w, r, http.StatusNotFound, "todo not found")
			return
		}
		s.internalError(w, r, "toggle todo", err)
		return
	}

	s.writeHTML(w, r, http.StatusOK, func(out io.Writer) error {
		return render.Item(out, updated)
	})
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.service.Remove(r.Context(), id); err != nil {
		s.internalError(w, r, "remove todo", err)
		return
	}
	writeEmpty(w)
}

// pathID parses {id}. The route only matches digits, so the only failure
// left is a value that overflows uint64.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.Error(op+" failed", "rid", RequestIDFromContext(r.Context()), "err", err)
	s.writeError(w, r, http.StatusInternalServerError, "internal error")
}
