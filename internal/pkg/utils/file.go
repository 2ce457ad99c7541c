package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
)

//WriteFile write file to disk
func WriteFile(name string, data []byte) error {
	goapp.Log.Debug().Str("name", name).Int("len", len(data)).Msg("Save")
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(data)
	return err
}

//RemoveQuietly deletes the file ignoring any error
func RemoveQuietly(name string) {
	if name != "" {
		_ = os.Remove(name)
	}
}

//SupportImageExt checks if file looks like a receipt image
func SupportImageExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".png" || ext == ".jpg" || ext == ".jpeg"
}

// ParamTrue - returns true if string param indicates true value
func ParamTrue(prm string) bool {
	return strings.ToLower(prm) == "true" || prm == "1"
}
