package server

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"mediadrop/internal/pkg/response"
)

// filesOnly hides directories without an index.html so nothing is listed.
type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if st.IsDir() {
		index, err := f.fs.Open(path.Join(name, "index.html"))
		if err != nil {
			_ = file.Close()
			return nil, os.ErrNotExist
		}
		_ = index.Close()
	}
	return file, nil
}

func mediaFS(fs afero.Fs, dir string) http.FileSystem {
	return filesOnly{fs: afero.NewHttpFs(afero.NewBasePathFs(fs, dir))}
}

// publicFiles serves the browser client for unmatched GET requests and
// answers everything else with a JSON 404.
func publicFiles(public afero.Fs) gin.HandlerFunc {
	var (
		fs    http.FileSystem
		files http.Handler
	)
	if public != nil {
		fs = filesOnly{fs: afero.NewHttpFs(public)}
		files = http.FileServer(fs)
	}

	return func(c *gin.Context) {
		method := c.Request.Method
		if fs != nil && (method == http.MethodGet || method == http.MethodHead) &&
			!strings.HasPrefix(c.Request.URL.Path, "/api/") {
			if f, err := fs.Open(path.Clean("/" + c.Request.URL.Path)); err == nil {
				_ = f.Close()
				c.Status(http.StatusOK)
				files.ServeHTTP(c.Writer, c.Request)
				return
			}
		}
		response.Error(c, http.StatusNotFound, "Ruta no encontrada")
	}
}
