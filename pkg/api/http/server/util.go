package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/cadenceworks/foreman/internal/utils"
	fe "github.com/cadenceworks/foreman/pkg/errors"
	"github.com/cadenceworks/foreman/pkg/structs"
)

var (
	errmap map[int][]error = map[int][]error{
		http.StatusBadRequest: []error{
			fe.ErrNoTaskType,
			fe.ErrMaxExceeded,
			fe.ErrInvalidArg,
			fe.ErrNotSupported,
		},
		http.StatusNotFound: []error{
			fe.ErrNotFound,
		},
		http.StatusConflict: []error{
			fe.ErrInvalidTransition,
			fe.ErrNotOwner,
		},
	}
)

// mapError returns the http status code for a given foreman error, or
// http.StatusInternalServerError if the error is not recognised.
func mapError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for code, errs := range errmap {
		for _, e := range errs {
			if errors.Is(err, e) {
				return code
			}
		}
	}
	return http.StatusInternalServerError
}

func unmarshalQuery(w http.ResponseWriter, r *http.Request, out *structs.Query) error {
	q := r.URL.Query()

	if q.Has("limit") {
		limit, err := strconv.Atoi(q.Get("limit"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return fmt.Errorf("bad limit: %v", err)
		}
		out.Limit = limit
	}

	if q.Has("offset") {
		offset, err := strconv.Atoi(q.Get("offset"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return fmt.Errorf("bad offset: %v", err)
		}
		out.Offset = offset
	}

	if q.Has("task_ids") {
		out.TaskIDs = q["task_ids"]
		for _, id := range out.TaskIDs {
			if !utils.IsValidID(id) {
				http.Error(w, "bad task id", http.StatusBadRequest)
				return fmt.Errorf("bad task id: %v", id)
			}
		}
	}
	if q.Has("group_ids") {
		out.GroupIDs = q["group_ids"]
		for _, id := range out.GroupIDs {
			if !utils.IsValidID(id) {
				http.Error(w, "bad group id", http.StatusBadRequest)
				return fmt.Errorf("bad group id: %v", id)
			}
		}
	}
	if q.Has("types") {
		out.Types = q["types"]
	}
	if q.Has("workers") {
		out.Workers = q["workers"]
	}
	if q.Has("states") {
		out.States = []structs.State{}
		for _, s := range q["states"] {
			st := structs.ToState(s)
			if st == "" {
				http.Error(w, "bad state", http.StatusBadRequest)
				return fmt.Errorf("bad state: %v", s)
			}
			out.States = append(out.States, st)
		}
	}

	out.Sanitize()
	return nil
}

// unmarshalJson reads the body of a request and attempts to unmarshal it into the given object.
// This function write an error to the writer if an error occurs, and returns the error.
func unmarshalJson(w http.ResponseWriter, r *http.Request, obj interface{}) error {
	if r.Body == nil {
		http.Error(w, "No body", http.StatusBadRequest)
		return fmt.Errorf("no body")
	}
	d := json.NewDecoder(r.Body)
	d.DisallowUnknownFields() // catch unwanted fields

	err := d.Decode(obj)
	if err != nil {
		// bad JSON or unrecognized json field
		http.Error(w, err.Error(), http.StatusBadRequest)
		return fmt.Errorf("bad json: %v", err)
	}

	return nil
}
