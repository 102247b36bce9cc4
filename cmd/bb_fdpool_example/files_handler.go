package main

import (
	"io"
	"net/http"
	"os"

	"github.com/buildbarn/bb-fdpool/pkg/pool"

	"github.com/gorilla/mux"
)

// newFilesHandler wires an HTTP GET/PUT surface directly onto the
// pool: GET reads the whole file through a Read accessor, PUT writes
// the request body through a Write accessor. It exists purely to
// exercise GetHandler/GetAccessor/Release end to end from a running
// process, the way a unit test would but driven by real requests.
//
// Handler lookup goes through tracingManager rather than calling
// pool.GetHandler directly, so every request gets a
// "Manager.GetHandler" span carrying the request's path.
func newFilesHandler(tracingManager *pool.TracingManager[*os.File]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := "/" + mux.Vars(r)["path"]

		handler, err := tracingManager.GetHandler(r.Context(), path)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		defer handler.Release()

		switch r.Method {
		case http.MethodGet:
			accessor, ok, err := handler.GetAccessor(pool.Read)
			if err != nil {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			if !ok {
				http.Error(w, "file is locked for writing", http.StatusConflict)
				return
			}
			defer accessor.Release()

			// A descriptor reused from the Handler's idle set may
			// still be positioned where its previous use left it.
			fd := accessor.GetDescriptor()
			if _, err := fd.Seek(0, io.SeekStart); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if _, err := io.Copy(w, fd); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}

		case http.MethodPut:
			accessor, ok, err := handler.GetAccessor(pool.Write)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if !ok {
				http.Error(w, "file is locked", http.StatusConflict)
				return
			}
			defer accessor.Release()

			fd := accessor.GetDescriptor()
			if err := fd.Truncate(0); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if _, err := fd.Seek(0, io.SeekStart); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if _, err := io.Copy(fd, r.Body); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusNoContent)

		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
