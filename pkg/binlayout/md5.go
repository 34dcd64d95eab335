package binlayout

import "crypto/md5"

// MD5Sum computes the 16-byte MD5 digest of data, as required by the
// container entry header and the cipher-layer plaintext digest.
func MD5Sum(data []byte) [16]byte {
	return md5.Sum(data)
}

// IsZeroMD5 reports whether digest is the all-zero sentinel the container
// format uses to mean "skip verification for this entry".
func IsZeroMD5(digest [16]byte) bool {
	for _, b := range digest {
		if b != 0 {
			return false
		}
	}
	return true
}
