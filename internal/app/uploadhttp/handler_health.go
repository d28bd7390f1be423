package uploadhttp

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
)

// healthStats — payload ответа /health.
type healthStats struct {
	OK           bool  `json:"ok"`
	StagingBytes int64 `json:"staging_bytes"`
	UploadBytes  int64 `json:"upload_bytes"`
}

// health возвращает агрегированную статистику по каталогам данных.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	stagingTotal, err := dirBytes(s.Cfg.StagingDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	uploadTotal, err := dirBytes(s.Cfg.UploadDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(healthStats{
		OK:           true,
		StagingBytes: stagingTotal,
		UploadBytes:  uploadTotal,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// dirBytes суммирует размер всех файлов каталога для простой capacity-метрики.
func dirBytes(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()

		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}

	return total, nil
}
