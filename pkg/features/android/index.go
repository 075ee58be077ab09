package android

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/outfit-dev/outfit/pkg/errors"
)

// ChecksumFromIndex extracts the SHA-256 of an archive from Google's
// repository2-1.xml package index. Entries carrying only the legacy
// SHA-1 digest are ignored, which drops verification down a tier
// rather than weakening it.
func ChecksumFromIndex(data []byte, artifactName string) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", errors.Wrap(err, errors.ErrChecksumMissing, "failed to parse package index")
	}

	for _, pkg := range doc.FindElements("//remotePackage") {
		for _, archive := range pkg.FindElements(".//archive") {
			complete := archive.FindElement("complete")
			if complete == nil {
				continue
			}
			urlEl := complete.FindElement("url")
			if urlEl == nil || strings.TrimSpace(urlEl.Text()) != artifactName {
				continue
			}
			checksum := complete.FindElement("checksum")
			if checksum == nil {
				continue
			}
			algo := strings.ToLower(checksum.SelectAttrValue("type", "sha1"))
			if algo != "sha-256" && algo != "sha256" {
				continue
			}
			digest := strings.ToLower(strings.TrimSpace(checksum.Text()))
			if len(digest) != 64 {
				continue
			}
			return digest, nil
		}
	}
	return "", errors.Newf(errors.ErrChecksumMissing,
		"no SHA-256 entry for %s in package index", artifactName)
}
