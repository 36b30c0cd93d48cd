package object

import "github.com/klauspost/compress/zstd"

// compressZstd compresses a framed object envelope before it touches disk.
func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

// decompressZstd reverses compressZstd. A corrupt or truncated frame
// surfaces as an error from the decoder, which Get wraps as corrupt-object.
func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
