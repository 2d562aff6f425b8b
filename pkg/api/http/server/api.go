package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/cadenceworks/foreman/internal/utils"
	"github.com/cadenceworks/foreman/pkg/api"
	"github.com/cadenceworks/foreman/pkg/api/http/common"
	"github.com/cadenceworks/foreman/pkg/structs"
)

const (
	wait = 30 * time.Second
)

type Server struct {
	opts       *api.Options
	svc        api.API
	log        *logrus.Entry
	exit       chan os.Signal
	httpserver *http.Server
}

func NewServer(opts *api.Options) *Server {
	return &Server{
		opts: opts,
		log:  logrus.WithField("component", "api"),
		exit: make(chan os.Signal, 1),
	}
}

func (s *Server) ServeForever(svc api.API) error {
	s.svc = svc

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.Health).Methods(http.MethodGet)
	router.HandleFunc(common.API_TASKS, s.Tasks).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc(common.API_TASKS+"/{id}", s.GetTask).Methods(http.MethodGet)
	router.HandleFunc(common.API_TASKS+"/{id}/cancel", s.CancelTask).Methods(http.MethodPost)
	router.HandleFunc(common.API_GROUPS, s.Groups).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc(common.API_GROUPS+"/{id}", s.GetGroup).Methods(http.MethodGet)
	router.HandleFunc(common.API_WORKERS, s.Workers).Methods(http.MethodGet)

	if s.opts.Static != "" {
		s.log.Info("serving static files from ", s.opts.Static)
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.opts.Static)))
	}

	if s.opts.Debug {
		s.log.Info("debug enabled, adding per-request logging middleware")
		router.Use(loggingMiddleware)
	}

	tlsCfg, err := utils.TLSConfig("", s.opts.TLSCert, s.opts.TLSKey)
	if err != nil {
		return err
	}

	s.httpserver = &http.Server{
		Handler:      router,
		Addr:         s.opts.Addr,
		TLSConfig:    tlsCfg,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	go func() {
		s.log.Info("listening on ", s.httpserver.Addr)
		var err error
		if tlsCfg != nil {
			err = s.httpserver.ListenAndServeTLS(s.opts.TLSCert, s.opts.TLSKey)
		} else {
			err = s.httpserver.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("server stopped")
		}
	}()

	signal.Notify(s.exit, os.Interrupt)
	<-s.exit

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	return s.httpserver.Shutdown(ctx)
}

func (s *Server) Tasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getTasks(w, r)
	case http.MethodPost:
		s.dispatchTask(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) dispatchTask(w http.ResponseWriter, r *http.Request) {
	req := &structs.DispatchRequest{}
	err := unmarshalJson(w, r, req)
	if err != nil {
		return
	}

	task, err := s.svc.Dispatch(req)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	err = json.NewEncoder(w).Encode(task)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) getTasks(w http.ResponseWriter, r *http.Request) {
	q := &structs.Query{}
	err := unmarshalQuery(w, r, q)
	if err != nil {
		return
	}

	items, err := s.svc.Tasks(q)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}
	if s.opts.Debug {
		s.log.Debug(r.URL, " returned ", len(items), " items")
	}

	err = json.NewEncoder(w).Encode(items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.svc.Task(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	err = json.NewEncoder(w).Encode(task)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) CancelTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.svc.Cancel(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	err = json.NewEncoder(w).Encode(task)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) Groups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getGroups(w, r)
	case http.MethodPost:
		s.createGroup(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	req := &structs.CreateGroupRequest{}
	err := unmarshalJson(w, r, req)
	if err != nil {
		return
	}

	group, err := s.svc.CreateGroup(req)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	err = json.NewEncoder(w).Encode(group)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) getGroups(w http.ResponseWriter, r *http.Request) {
	q := &structs.Query{}
	err := unmarshalQuery(w, r, q)
	if err != nil {
		return
	}

	items, err := s.svc.Groups(q)
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	err = json.NewEncoder(w).Encode(items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) GetGroup(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Group(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	err = json.NewEncoder(w).Encode(summary)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) Workers(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Workers()
	if err != nil {
		http.Error(w, err.Error(), mapError(err))
		return
	}

	err = json.NewEncoder(w).Encode(items)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) Close() error {
	s.exit <- os.Interrupt
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
