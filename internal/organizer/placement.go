package organizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"photosorter/internal/fileutil"
	"photosorter/internal/logging"
	"photosorter/internal/media"
	"photosorter/internal/outcome"
)

// Decision is the resolved placement for one primary file.
type Decision struct {
	// DestinationPath is where the file now lives, or the existing identical
	// file when Duplicate is set.
	DestinationPath string
	FinalBaseName   string
	Duplicate       bool
	Bytes           int64
	Sidecars        []outcome.SidecarEntry
}

// Placer moves classified files into YEAR/MM buckets under an output root.
type Placer struct {
	types  media.Types
	logger *slog.Logger
}

// NewPlacer constructs a Placer that carries sidecars along with each primary
// according to types.
func NewPlacer(types media.Types, logger *slog.Logger) *Placer {
	return &Placer{
		types:  types,
		logger: logging.NewComponentLogger(logger, "placer"),
	}
}

// Place moves file into outputRoot/YEAR/MM. Name collisions with distinct
// content are resolved by appending -1, -2, ... to the base name; a collision
// with identical content yields a Duplicate decision and nothing is moved.
// A base is only taken when the primary and every sidecar target under it are
// free. Sidecars follow the primary under its final base name and their
// failures never undo the primary move.
func (p *Placer) Place(ctx context.Context, file media.File, bucket media.Bucket, outputRoot string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}
	destDir := filepath.Join(outputRoot, bucket.RelPath())
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Decision{}, outcome.Wrap(outcome.ErrDestinationCreate, file.Path, "create bucket", destDir, err)
	}

	srcInfo, err := os.Stat(file.Path)
	if err != nil {
		return Decision{}, outcome.Wrap(outcome.ErrMoveFailed, file.Path, "stat source", "", err)
	}

	sidecars := p.findSidecars(file)
	target, finalBase, duplicate, err := resolveTarget(file, sidecars, destDir)
	if err != nil {
		return Decision{}, outcome.Wrap(outcome.ErrMoveFailed, file.Path, "resolve collision", "", err)
	}
	if duplicate {
		p.logger.Info("identical file already placed; leaving source in place",
			logging.String("path", file.Path),
			logging.String("existing", target),
		)
		return Decision{
			DestinationPath: target,
			FinalBaseName:   finalBase,
			Duplicate:       true,
			Sidecars:        duplicateSidecars(sidecars, destDir, finalBase),
		}, nil
	}

	if err := fileutil.Move(file.Path, target); err != nil {
		return Decision{}, outcome.Wrap(outcome.ErrMoveFailed, file.Path, "move", target, err)
	}
	decision := Decision{
		DestinationPath: target,
		FinalBaseName:   finalBase,
		Bytes:           srcInfo.Size(),
	}
	p.logger.Info("placed file",
		logging.String("path", file.Path),
		logging.String("destination", target),
		logging.String("bucket", bucket.String()),
	)

	for _, sidecar := range sidecars {
		entry, size := p.moveSidecar(sidecar, destDir, finalBase)
		decision.Sidecars = append(decision.Sidecars, entry)
		decision.Bytes += size
	}
	return decision, nil
}

// resolveTarget walks name, name-1, name-2, ... until it finds a base where
// the primary and all sidecar targets are free, or where the primary target
// holds content identical to the source. Any existing entry, including a
// dangling symlink, counts as occupied.
func resolveTarget(file media.File, sidecars []string, destDir string) (string, string, bool, error) {
	ext := file.Name[len(file.BaseName):]
	for n := 0; ; n++ {
		base := file.BaseName
		if n > 0 {
			base = fmt.Sprintf("%s-%d", file.BaseName, n)
		}
		candidate := filepath.Join(destDir, base+ext)
		_, err := os.Lstat(candidate)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			free, err := sidecarTargetsFree(sidecars, destDir, base)
			if err != nil {
				return "", "", false, err
			}
			if free {
				return candidate, base, false, nil
			}
		case err != nil:
			return "", "", false, err
		default:
			same, err := sameRegularContent(file.Path, candidate)
			if err != nil {
				return "", "", false, err
			}
			if same {
				return candidate, base, true, nil
			}
		}
		if n == math.MaxInt {
			return "", "", false, fmt.Errorf("no free name for %s in %s", file.Name, destDir)
		}
	}
}

func sidecarTargetsFree(sidecars []string, destDir, base string) (bool, error) {
	for _, sidecar := range sidecars {
		_, err := os.Lstat(sidecarTarget(sidecar, destDir, base))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// sameRegularContent compares src with an existing entry, following a
// symlink to its target. Anything that is not a regular file never matches.
func sameRegularContent(src, existing string) (bool, error) {
	info, err := os.Stat(existing)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}
	return fileutil.SameContent(src, existing)
}

// duplicateSidecars returns the sidecars whose target under base already
// holds identical content.
func duplicateSidecars(sidecars []string, destDir, base string) []outcome.SidecarEntry {
	var entries []outcome.SidecarEntry
	for _, sidecar := range sidecars {
		target := sidecarTarget(sidecar, destDir, base)
		if same, err := sameRegularContent(sidecar, target); err == nil && same {
			entries = append(entries, outcome.SidecarEntry{Source: sidecar, Destination: target})
		}
	}
	return entries
}

func sidecarTarget(source, destDir, base string) string {
	return filepath.Join(destDir, base+filepath.Ext(source))
}

// findSidecars returns the siblings named BaseName.<ext> that the primary
// carries. The extension is matched case-insensitively and the sibling keeps
// its own casing.
func (p *Placer) findSidecars(file media.File) []string {
	if len(p.types.Sidecars) == 0 || file.Kind == media.KindUnsupported {
		return nil
	}
	entries, err := os.ReadDir(file.Dir)
	if err != nil {
		p.logger.Warn("unable to list source folder for sidecars",
			logging.String("dir", file.Dir),
			logging.Error(err),
		)
		return nil
	}
	var found []string
	for _, ext := range p.types.Sidecars {
		if !p.types.CarriesSidecar(file.Kind, ext) {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || name == file.Name {
				continue
			}
			dot := strings.LastIndexByte(name, '.')
			if dot <= 0 || name[:dot] != file.BaseName {
				continue
			}
			if media.NormalizeExt(name[dot+1:]) != ext {
				continue
			}
			found = append(found, filepath.Join(file.Dir, name))
		}
	}
	return found
}

func (p *Placer) moveSidecar(source, destDir, finalBase string) (outcome.SidecarEntry, int64) {
	target := sidecarTarget(source, destDir, finalBase)
	entry := outcome.SidecarEntry{Source: source, Destination: target}

	info, err := os.Stat(source)
	if err != nil {
		entry.Err = err.Error()
		return entry, 0
	}
	if _, err := os.Lstat(target); err == nil {
		entry.Err = "destination already exists"
		logging.WarnWithContext(p.logger, "sidecar destination occupied", string(outcome.KindMoveFailed),
			logging.String("path", source),
			logging.String("destination", target),
			logging.String(logging.FieldImpact, "sidecar left at its original location"),
		)
		return entry, 0
	}
	if err := fileutil.Move(source, target); err != nil {
		entry.Err = err.Error()
		logging.WarnWithContext(p.logger, "sidecar move failed", string(outcome.KindMoveFailed),
			logging.String("path", source),
			logging.String("destination", target),
			logging.Error(err),
			logging.String(logging.FieldImpact, "sidecar left at its original location"),
		)
		return entry, 0
	}
	p.logger.Debug("moved sidecar",
		logging.String("path", source),
		logging.String("destination", target),
	)
	return entry, info.Size()
}
