package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"stemzipper/internal/logging"
	"stemzipper/internal/packerr"
	"stemzipper/internal/packing"
)

// Group is a realized archive.
type Group struct {
	Path    string
	Name    string
	Members []string
	Marker  string
	Size    int64
	// Volumes lists the split parts when the container was remediated.
	Volumes []string
	// Oversized is set when the container exceeded the capacity after
	// compression, whether or not it was split afterwards.
	Oversized bool
	// Warning carries a recoverable remediation failure.
	Warning error
}

// Options configures a Builder.
type Options struct {
	Prefix        string
	CapacityBytes int64
	VolumeBytes   int64
	Splitter      VolumeSplitter
	Metadata      *Metadata
	Locale        string
	Logger        *slog.Logger
	Now           func() time.Time
}

// Builder writes bins to zip containers.
type Builder struct {
	opts   Options
	logger *slog.Logger
}

// NewBuilder constructs a Builder. A nil Splitter disables remediation.
func NewBuilder(opts Options) *Builder {
	if opts.Prefix == "" {
		opts.Prefix = "stems"
	}
	if opts.VolumeBytes <= 0 {
		opts.VolumeBytes = opts.CapacityBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "archive")}
}

// Prefix returns the archive name prefix in use.
func (b *Builder) Prefix() string {
	return b.opts.Prefix
}

// ArchiveName returns the container file name for a 1-based index.
func ArchiveName(prefix string, index int) string {
	return fmt.Sprintf("%s-%02d.zip", prefix, index)
}

// Build writes bin into <outputDir>/<prefix>-NN.zip, replacing any existing
// file of that name. Write failures are fatal and wrapped with
// packerr.ErrArchiveWrite; remediation problems are reported on Group.Warning.
func (b *Builder) Build(ctx context.Context, bin packing.Bin, outputDir string, index int) (Group, error) {
	name := ArchiveName(b.opts.Prefix, index)
	path := filepath.Join(outputDir, name)
	marker := MarkerText(b.opts.Metadata, b.opts.Locale, b.opts.Now())
	logger := logging.WithContext(ctx, b.logger).With(logging.String(logging.FieldArchive, name))

	stale, err := RemoveStaleVolumes(path)
	if err != nil {
		return Group{}, packerr.Wrap(packerr.ErrArchiveWrite, "archive", "remove stale volumes", name, err)
	}
	if len(stale) > 0 {
		logger.Info("removed volumes from an earlier run",
			logging.Int("count", len(stale)),
			logging.String("files", joinBase(stale)),
		)
	}

	members, err := b.write(path, bin, marker)
	if err != nil {
		return Group{}, packerr.Wrap(packerr.ErrArchiveWrite, "archive", "build", name, err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return Group{}, packerr.Wrap(packerr.ErrArchiveWrite, "archive", "stat", name, err)
	}

	group := Group{Path: path, Name: name, Members: members, Marker: marker, Size: stat.Size()}
	logger.Info("archive written",
		logging.Int("members", len(members)),
		logging.Size("size", group.Size),
		logging.Size("capacity", b.opts.CapacityBytes),
	)

	if group.Size <= b.opts.CapacityBytes {
		return group, nil
	}
	group.Oversized = true
	b.remediate(ctx, logger, &group)
	return group, nil
}

func (b *Builder) remediate(ctx context.Context, logger *slog.Logger, group *Group) {
	if b.opts.Splitter == nil {
		group.Warning = packerr.Wrap(packerr.ErrSplitterUnavailable, "archive", "remediate", group.Name, nil)
		logging.WarnWithContext(logger, "archive exceeds size limit and no volume splitter is available", "volume_splitter_missing",
			logging.Size("size", group.Size),
			logging.String(logging.FieldErrorHint, packerr.Hint(group.Warning)),
			logging.String(logging.FieldImpact, "archive left intact above the size limit"),
		)
		return
	}

	parts, err := b.opts.Splitter.Split(ctx, group.Path, b.opts.VolumeBytes)
	if err != nil {
		if !errors.Is(err, packerr.ErrVolumeSplit) {
			err = packerr.Wrap(packerr.ErrVolumeSplit, "archive", "remediate", group.Name, err)
		}
		group.Warning = err
		logging.WarnWithContext(logger, "volume split failed", "volume_split_failed",
			logging.String("splitter", b.opts.Splitter.Name()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, packerr.Hint(err)),
			logging.String(logging.FieldImpact, "archive left intact above the size limit"),
		)
		return
	}
	group.Volumes = parts
	logger.Info("archive split into volumes",
		logging.String("splitter", b.opts.Splitter.Name()),
		logging.Int("volumes", len(parts)),
		logging.Size("volume_size", b.opts.VolumeBytes),
	)
}

func (b *Builder) write(path string, bin packing.Bin, marker string) (members []string, err error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	zw := zip.NewWriter(file)
	defer func() {
		if cerr := zw.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	members = make([]string, 0, len(bin.Items))
	for _, item := range bin.Items {
		entry, err := addFile(zw, item.Path)
		if err != nil {
			return nil, err
		}
		members = append(members, entry)
	}

	modified := b.opts.Now()
	if err := addBytes(zw, MarkerName, []byte(marker), zip.Store, modified); err != nil {
		return nil, err
	}
	if b.opts.Metadata != nil {
		extras, err := b.opts.Metadata.entries()
		if err != nil {
			return nil, err
		}
		for _, extra := range extras {
			if err := addBytes(zw, extra.name, extra.data, zip.Deflate, modified); err != nil {
				return nil, err
			}
		}
	}
	return members, nil
}

func addFile(zw *zip.Writer, path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return "", err
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(w, src); err != nil {
		return "", fmt.Errorf("copy %s: %w", header.Name, err)
	}
	return header.Name, nil
}

func addBytes(zw *zip.Writer, name string, data []byte, method uint16, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method, Modified: modified})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
