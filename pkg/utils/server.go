package utils

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	serverIDFile   = ".server_id"
	serverIDPrefix = "azplant-"
)

// GetPersistentServerID returns override when set. Otherwise it reuses the ID
// stored under storagePath, or derives one from the hostname (random when the
// hostname is unusable) and stores it so later runs agree.
func GetPersistentServerID(override, storagePath string) string {
	if override != "" {
		return override
	}

	idFile := filepath.Join(storagePath, serverIDFile)
	if id := readServerID(idFile); id != "" {
		return id
	}

	id := hostServerID()
	if id == "" {
		id = randomServerID()
	}
	if err := os.MkdirAll(storagePath, 0o755); err == nil {
		err = os.WriteFile(idFile, []byte(id), 0o644)
		if err != nil {
			logrus.Warnf("[SERVER] could not persist server id: %v", err)
		}
	}
	return id
}

func readServerID(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// hostServerID keeps only characters safe for Valkey keys.
func hostServerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" || host == "localhost" {
		return ""
	}
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, host)
	if clean == "" {
		return ""
	}
	return serverIDPrefix + clean
}

func randomServerID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return serverIDPrefix + hex.EncodeToString(b)
}
