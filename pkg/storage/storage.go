// Package storage persists the device configuration using LittleFS.
// It handles atomic writes, version checking, and cleanup of temporary files.
package storage

import (
	"errors"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/tuffrabit/tinygo-oledpager/pkg/config"

	"tinygo.org/x/tinyfs"
	"tinygo.org/x/tinyfs/littlefs"
)

const (
	configDir  = "/config"
	deviceFile = "/config/device.bin"
	tempSuffix = ".tmp"
)

var (
	ErrConfigNotFound = errors.New("config not found")
	ErrInvalidConfig  = errors.New("invalid config data")
)

// Manager handles config persistence using LittleFS.
type Manager struct {
	fs       *littlefs.LFS
	blockDev tinyfs.BlockDevice
	mounted  bool
	log      *slog.Logger
}

// Stats provides information about storage usage.
type Stats struct {
	TotalSpace int64
	UsedSpace  int64
	FreeSpace  int64
	HasConfig  bool
}

// New initializes the storage system with the given block device.
// It mounts the filesystem and performs boot-time cleanup.
// If format is true and mount fails, it will format the filesystem.
// A nil logger discards.
func New(blockDev tinyfs.BlockDevice, format bool, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	lfs := littlefs.New(blockDev)

	// Configure LittleFS for RP2040 flash
	lfs.Configure(&littlefs.Config{
		CacheSize:     512,
		LookaheadSize: 128,
	})

	// Try to mount existing filesystem
	err := lfs.Mount()
	if err != nil {
		if !format {
			return nil, err
		}
		logger.Warn("mount failed, formatting", "err", err)
		if err := lfs.Format(); err != nil {
			return nil, err
		}
		if err := lfs.Mount(); err != nil {
			return nil, err
		}
	}

	m := &Manager{
		fs:       lfs,
		blockDev: blockDev,
		mounted:  true,
		log:      logger,
	}

	if err := m.bootCleanup(); err != nil {
		m.log.Warn("boot cleanup", "err", err)
	}

	needsWipe, err := m.checkVersion()
	if err != nil {
		// Unreadable record, LoadOrDefault falls back to defaults
		m.log.Warn("config check", "err", err)
		needsWipe = false
	}

	if needsWipe {
		m.log.Info("config version changed, wiping")
		if err := m.wipeAll(); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Close unmounts the filesystem.
func (m *Manager) Close() error {
	if m.mounted {
		m.mounted = false
		return m.fs.Unmount()
	}
	return nil
}

// bootCleanup removes temporary files left over from interrupted writes.
func (m *Manager) bootCleanup() error {
	entries, err := m.readDir(configDir)
	if err != nil {
		// Config dir might not exist yet
		if isNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, tempSuffix) {
			m.log.Debug("removing stale temp file", "name", name)
			m.fs.Remove(path.Join(configDir, name))
		}
	}
	return nil
}

// readDir reads the directory entries at the given path.
func (m *Manager) readDir(dirPath string) ([]os.FileInfo, error) {
	f, err := m.fs.Open(dirPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !f.IsDir() {
		return nil, errors.New("not a directory")
	}

	return f.Readdir(-1)
}

// checkVersion reads the device config and reports whether it was written
// by a different config format.
func (m *Manager) checkVersion() (bool, error) {
	var cfg config.DeviceConfig
	if err := m.LoadConfig(&cfg); err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			// First boot
			return false, nil
		}
		return false, err
	}

	return cfg.Version != config.CurrentVersion, nil
}

// wipeAll removes the stored configuration.
func (m *Manager) wipeAll() error {
	err := m.fs.Remove(deviceFile)
	if err != nil && !isNotExist(err) {
		return err
	}
	return nil
}

// ensureDirs creates the config directory if it doesn't exist.
func (m *Manager) ensureDirs() error {
	if err := m.fs.Mkdir(configDir, 0755); err != nil && !isExist(err) {
		return err
	}
	return nil
}

// isExist checks if an error is "already exists".
// LittleFS errors don't always match os.IsExist, so we check the message too.
func isExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "already exists")
}

// isNotExist is isExist for missing entries.
func isNotExist(err error) bool {
	if err == nil {
		return false
	}
	if os.IsNotExist(err) {
		return true
	}
	return strings.Contains(err.Error(), "No directory entry")
}

// LoadConfig loads the device configuration.
func (m *Manager) LoadConfig(cfg *config.DeviceConfig) error {
	f, err := m.fs.Open(deviceFile)
	if err != nil {
		if isNotExist(err) {
			return ErrConfigNotFound
		}
		return err
	}
	defer f.Close()

	buf := make([]byte, config.Size)
	n, err := f.Read(buf)
	if err != nil {
		return err
	}
	if n != config.Size {
		return ErrInvalidConfig
	}

	return cfg.UnmarshalBinary(buf)
}

// SaveConfig validates and saves the device configuration atomically.
func (m *Manager) SaveConfig(cfg *config.DeviceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := m.ensureDirs(); err != nil {
		return err
	}

	cfg.Version = config.CurrentVersion

	data, err := cfg.MarshalBinary()
	if err != nil {
		return err
	}

	return m.atomicWrite(deviceFile, data)
}

// LoadOrDefault returns the stored configuration, or the defaults when
// nothing usable is stored.
func (m *Manager) LoadOrDefault() config.DeviceConfig {
	var cfg config.DeviceConfig
	err := m.LoadConfig(&cfg)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		if !errors.Is(err, ErrConfigNotFound) {
			m.log.Warn("stored config unusable, using defaults", "err", err)
		}
		return config.Default()
	}
	return cfg
}

// GetStats returns storage statistics.
func (m *Manager) GetStats() (*Stats, error) {
	// LittleFS doesn't have a direct "free space" call.
	// The device record is 20 bytes plus ~32 bytes of LittleFS overhead,
	// plus the directory entry.
	hasConfig := true
	f, err := m.fs.Open(deviceFile)
	if err != nil {
		if !isNotExist(err) {
			return nil, err
		}
		hasConfig = false
	} else {
		f.Close()
	}

	used := int64(100)
	if hasConfig {
		used += int64(config.Size + 32)
	}
	total := m.blockDev.Size()

	return &Stats{
		TotalSpace: total,
		UsedSpace:  used,
		FreeSpace:  total - used,
		HasConfig:  hasConfig,
	}, nil
}

// atomicWrite writes data to a temporary file, syncs it, then renames.
// The original file is never in a partially written state.
func (m *Manager) atomicWrite(filepath string, data []byte) error {
	tempPath := filepath + tempSuffix

	// Remove temp file if it exists (from interrupted previous write)
	m.fs.Remove(tempPath)

	f, err := m.fs.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		m.fs.Remove(tempPath)
		return err
	}

	// Sync ensures data hits flash
	if syncer, ok := f.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			f.Close()
			m.fs.Remove(tempPath)
			return err
		}
	}

	if err := f.Close(); err != nil {
		m.fs.Remove(tempPath)
		return err
	}

	// LittleFS rename doesn't replace
	m.fs.Remove(filepath)

	if err := m.fs.Rename(tempPath, filepath); err != nil {
		m.fs.Remove(tempPath)
		return err
	}

	return nil
}

// ForceWipe erases the stored configuration (factory reset).
func (m *Manager) ForceWipe() error {
	return m.wipeAll()
}
