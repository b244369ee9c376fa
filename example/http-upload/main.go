package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/lsfratel/formspark"
	httpform "github.com/lsfratel/formspark/http"
)

const iconDir = "icons"

func main() {
	if err := os.MkdirAll(iconDir, 0755); err != nil {
		slog.Error("failed to create icon dir", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		parser, err := httpform.NewParser(r, formspark.WithMaxBodySize(8*formspark.MB))
		if err != nil {
			writeError(w, err)
			return
		}
		defer parser.Cleanup()

		if err := parser.Parse(); err != nil {
			writeError(w, err)
			return
		}

		id, ok := parser.FormValue("id")
		if !ok || id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}

		icon, ok := parser.File("icon")
		if !ok {
			http.Error(w, "icon is required", http.StatusBadRequest)
			return
		}
		if icon.ContentType != "image/png" {
			http.Error(w, "content type is not supported", http.StatusBadRequest)
			return
		}

		iconPath := filepath.Join(iconDir, filepath.Base(id))
		file, err := os.Create(iconPath)
		if err != nil {
			http.Error(w, "failed to create file", http.StatusInternalServerError)
			return
		}
		defer file.Close()

		// the spooled upload must be copied out before Cleanup removes it
		if _, err := io.Copy(file, icon.Reader()); err != nil {
			http.Error(w, "failed to copy", http.StatusInternalServerError)
			return
		}

		slog.Info("icon uploaded", "id", id, "filename", icon.Filename, "size", icon.Size)
		w.WriteHeader(http.StatusCreated)
	})
	mux.Handle("/icons/", http.StripPrefix("/icons/", http.FileServer(http.Dir(iconDir))))

	if err := http.ListenAndServe(":8080", mux); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var perr formspark.Error
	if errors.As(err, &perr) {
		http.Error(w, perr.Message, perr.Status)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
