// Package staging управляет временным хранением частей на диске: по каталогу
// на сессию, по файлу chunk_{offset} на каждую принятую часть.
package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const chunkFilePrefix = "chunk_"

// ErrNameTaken сигнализирует о коллизии имени staging-каталога.
var ErrNameTaken = errors.New("staging directory already exists")

// Chunk описывает одну часть, лежащую в staging-каталоге.
type Chunk struct {
	Offset int64
	Size   int64
	Path   string
}

// Area — корневой каталог staging-директорий всех сессий.
type Area struct {
	root string
}

// New создаёт Area поверх каталога root, создавая его при необходимости.
func New(root string) (*Area, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Area{root: root}, nil
}

// Root возвращает корневой каталог.
func (a *Area) Root() string { return a.root }

// Reserve пытается занять каталог name. Каталог создаётся не-рекурсивным
// os.Mkdir, поэтому повторное имя детектируется как ErrNameTaken.
func (a *Area) Reserve(name string) error {
	err := os.Mkdir(a.dir(name), 0o755)
	if err != nil && os.IsExist(err) {
		return ErrNameTaken
	}
	return err
}

// WriteChunk записывает тело части и атомарно публикует её как chunk_{offset},
// затирая прежнее содержимое: протокол доверяет последней доставке по каждому
// offset. Публикация через rename гарантирует, что под именем части никогда не
// лежит недописанный файл, даже если доставку оборвали на середине.
func (a *Area) WriteChunk(name string, offset int64, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(a.dir(name), ".chunk-*")
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return n, err
	}

	if err := os.Rename(tmp.Name(), a.chunkPath(name, offset)); err != nil {
		_ = os.Remove(tmp.Name())
		return n, err
	}
	return n, nil
}

// Chunks возвращает все части каталога name, отсортированные по offset.
func (a *Area) Chunks(name string) ([]Chunk, error) {
	entries, err := os.ReadDir(a.dir(name))
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), chunkFilePrefix) {
			continue
		}

		offset, err := strconv.ParseInt(strings.TrimPrefix(e.Name(), chunkFilePrefix), 10, 64)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("malformed chunk file name %q", e.Name())
		}

		info, err := e.Info()
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, Chunk{
			Offset: offset,
			Size:   info.Size(),
			Path:   filepath.Join(a.dir(name), e.Name()),
		})
	}

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Offset < chunks[j].Offset })
	return chunks, nil
}

// LastActivity возвращает самый свежий mtime среди каталога и его частей;
// по нему GC отличает брошенные сессии от ещё живых.
func (a *Area) LastActivity(name string) (time.Time, error) {
	info, err := os.Stat(a.dir(name))
	if err != nil {
		return time.Time{}, err
	}
	latest := info.ModTime()

	entries, err := os.ReadDir(a.dir(name))
	if err != nil {
		return time.Time{}, err
	}
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().After(latest) {
			latest = fi.ModTime()
		}
	}

	return latest, nil
}

// Remove рекурсивно удаляет staging-каталог вместе с частями.
func (a *Area) Remove(name string) error {
	return os.RemoveAll(a.dir(name))
}

// RemoveIfEmpty удаляет каталог, только если он уже пуст.
func (a *Area) RemoveIfEmpty(name string) error {
	return os.Remove(a.dir(name))
}

func (a *Area) dir(name string) string {
	return filepath.Join(a.root, name)
}

func (a *Area) chunkPath(name string, offset int64) string {
	return filepath.Join(a.dir(name), chunkFilePrefix+strconv.FormatInt(offset, 10))
}
