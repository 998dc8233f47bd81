package imaging

import (
	"bytes"

	"govector/src/core/conversion"
)

// FileType is an image format recognized by magic-byte sniffing.
type FileType int

const (
	TypeUnknown FileType = iota
	TypeJPEG
	TypePNG
	TypeHEIC
)

func (t FileType) String() string {
	switch t {
	case TypeJPEG:
		return "jpeg"
	case TypePNG:
		return "png"
	case TypeHEIC:
		return "heic"
	default:
		return "unknown"
	}
}

// MIME returns the MIME type for the detected format.
func (t FileType) MIME() string {
	switch t {
	case TypeJPEG:
		return "image/jpeg"
	case TypePNG:
		return "image/png"
	case TypeHEIC:
		return "image/heic"
	default:
		return "application/octet-stream"
	}
}

// Ext returns the canonical file extension, including the dot.
func (t FileType) Ext() string {
	switch t {
	case TypeJPEG:
		return ".jpg"
	case TypePNG:
		return ".png"
	case TypeHEIC:
		return ".heic"
	default:
		return ".bin"
	}
}

// minSniffLen covers the longest signature we check: the HEIC ftyp box
// brand at bytes 8..12.
const minSniffLen = 12

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

	// HEIC/HEIF files carry "ftyp" at offset 4 followed by a brand
	// identifier, there is no signature at offset 0.
	heicBrands = [][]byte{
		[]byte("heic"),
		[]byte("heix"),
		[]byte("hevc"),
		[]byte("hevx"),
		[]byte("mif1"),
		[]byte("msf1"),
	}
)

// DetectType inspects the leading bytes of data against known image
// signatures. Extensions and client-provided metadata are deliberately
// ignored; only the content decides. Buffers shorter than the minimum
// signature length are Unknown.
func DetectType(data []byte) FileType {
	if len(data) < minSniffLen {
		return TypeUnknown
	}
	if bytes.HasPrefix(data, jpegMagic) {
		return TypeJPEG
	}
	if bytes.HasPrefix(data, pngMagic) {
		return TypePNG
	}
	if bytes.Equal(data[4:8], []byte("ftyp")) {
		brand := data[8:12]
		for _, b := range heicBrands {
			if bytes.Equal(brand, b) {
				return TypeHEIC
			}
		}
	}
	return TypeUnknown
}

// ValidateType detects the image type and rejects anything unsupported.
func ValidateType(data []byte) (FileType, error) {
	t := DetectType(data)
	if t == TypeUnknown {
		return TypeUnknown, conversion.Validationf(conversion.CodeInvalidFileType,
			"unsupported file type, please upload a JPG, PNG, or HEIC image")
	}
	return t, nil
}

// ValidateSize enforces the configured upload size bound. A buffer of
// exactly maxBytes passes.
func ValidateSize(data []byte, maxBytes int64) (int64, error) {
	size := int64(len(data))
	if size == 0 {
		return 0, conversion.Validationf(conversion.CodeValidation, "file is empty")
	}
	if size > maxBytes {
		return 0, conversion.Validationf(conversion.CodeFileTooLarge,
			"file too large (%.1fMB), maximum size is %dMB",
			float64(size)/(1024*1024), maxBytes/(1024*1024))
	}
	return size, nil
}
