package weights

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxHeaderBytes bounds the safetensors JSON header we are willing to parse.
const maxHeaderBytes = 16 << 20

var ggufMagic = []byte("GGUF")

// Loader resolves locators to resident weight handles.
type Loader interface {
	// LoadBase opens the base model file. Called once at startup.
	LoadBase(path string) (*BaseHandle, error)
	// Load reads adapter weights from the locator into memory.
	Load(ctx context.Context, name, locator string) (*Handle, error)
}

// FileLoader loads base models (GGUF) and adapters (safetensors) from the
// local filesystem.
type FileLoader struct{}

func NewFileLoader() *FileLoader { return &FileLoader{} }

func (l *FileLoader) LoadBase(path string) (*BaseHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open base model: %w", err)
	}
	defer f.Close()
	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("read base model header: %w", err)
	}
	if !bytes.Equal(magic, ggufMagic) {
		return nil, fmt.Errorf("%s is not a GGUF file", filepath.Base(path))
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat base model: %w", err)
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &BaseHandle{ID: id, Path: path, SizeMB: sizeMB(fi.Size())}, nil
}

func (l *FileLoader) Load(ctx context.Context, name, locator string) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(locator)
	if err != nil {
		return nil, fmt.Errorf("read adapter weights: %w", err)
	}
	rank, baseModel, err := parseSafetensors(b)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(locator), err)
	}
	return &Handle{
		Name:      name,
		Path:      locator,
		SizeMB:    sizeMB(int64(len(b))),
		Rank:      rank,
		BaseModel: baseModel,
		payload:   b,
	}, nil
}

// tensorEntry mirrors one entry of the safetensors header.
type tensorEntry struct {
	Dtype       string  `json:"dtype"`
	Shape       []int64 `json:"shape"`
	DataOffsets []int64 `json:"data_offsets"`
}

// parseSafetensors reads the safetensors header (8-byte little-endian length
// followed by a JSON object) and derives the LoRA rank plus the declared
// base-model binding from __metadata__.
func parseSafetensors(b []byte) (rank int, baseModel string, err error) {
	if len(b) < 8 {
		return 0, "", fmt.Errorf("file too short for safetensors header")
	}
	n := binary.LittleEndian.Uint64(b[:8])
	if n == 0 || n > maxHeaderBytes || n > uint64(len(b)-8) {
		return 0, "", fmt.Errorf("invalid safetensors header length %d", n)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b[8:8+n], &raw); err != nil {
		return 0, "", fmt.Errorf("header JSON: %w", err)
	}
	for key, msg := range raw {
		if key == "__metadata__" {
			var meta map[string]string
			if err := json.Unmarshal(msg, &meta); err != nil {
				return 0, "", fmt.Errorf("__metadata__: %w", err)
			}
			if v := meta["base_model"]; v != "" {
				baseModel = v
			} else if v := meta["base_model_name_or_path"]; v != "" {
				baseModel = v
			}
			continue
		}
		if !strings.Contains(strings.ToLower(key), "lora_a") {
			continue
		}
		var te tensorEntry
		if err := json.Unmarshal(msg, &te); err != nil {
			return 0, "", fmt.Errorf("tensor %s: %w", key, err)
		}
		// lora_A is [rank, in_features]; the smaller dimension is the rank.
		r := minDim(te.Shape)
		if r > 0 && (rank == 0 || r < rank) {
			rank = r
		}
	}
	return rank, baseModel, nil
}

func minDim(shape []int64) int {
	if len(shape) == 0 {
		return 0
	}
	m := shape[0]
	for _, d := range shape[1:] {
		if d < m {
			m = d
		}
	}
	if m < 0 {
		return 0
	}
	return int(m)
}

func sizeMB(n int64) int {
	mb := int(n / (1024 * 1024))
	if mb <= 0 {
		mb = 1
	}
	return mb
}
