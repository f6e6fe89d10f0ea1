package storage

import (
	"io"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// DetectContentType はファイルのContent-Typeを決定する。
// 拡張子から判定できない場合は先頭バイトから推定し、読み取り位置を先頭に戻す。
func DetectContentType(name string, r io.ReadSeeker) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}

	mt, err := mimetype.DetectReader(r)
	if _, seekErr := r.Seek(0, io.SeekStart); seekErr != nil || err != nil {
		return defaultContentType
	}
	return mt.String()
}

// AttachmentName はContent-Dispositionに使うファイル名を返す。
// "drops/guide.pdf" は "guide.pdf" になる。
func AttachmentName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(base)
}
