package exporters

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// Member is the part of a zip directory entry that decides equivalence.
type Member struct {
	Name  string
	Size  uint64
	CRC32 uint32
}

// ReadMembers lists the entries of a zip archive sorted by name.
func ReadMembers(path string) ([]Member, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip %s: %w", path, err)
	}
	defer r.Close()

	members := make([]Member, 0, len(r.File))
	for _, f := range r.File {
		members = append(members, Member{
			Name:  f.Name,
			Size:  f.UncompressedSize64,
			CRC32: f.CRC32,
		})
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Name < members[j].Name
	})
	return members, nil
}

// Equivalent reports whether two archives hold the same members (name,
// uncompressed size and CRC-32), ignoring the order they were written in.
func Equivalent(a, b string) (bool, error) {
	am, err := ReadMembers(a)
	if err != nil {
		return false, err
	}
	bm, err := ReadMembers(b)
	if err != nil {
		return false, err
	}
	return membersEqual(am, bm), nil
}

// membersEqual pairs sorted member lists positionally. An unpaired tail on
// either side never matches.
func membersEqual(a, b []Member) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	for i := 0; i < n; i++ {
		if i >= len(a) || i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ArchiveOptions controls how ArchiveDir writes entries.
type ArchiveOptions struct {
	// ModTime, when non-zero, replaces every entry's modification time so
	// repeated builds of the same tree produce the same bytes.
	ModTime time.Time
}

// ArchiveDir writes every entry below srcDir to a new zip at dest, with
// names relative to srcDir. Permission bits and symlinks are kept.
func ArchiveDir(srcDir, dest string, opts ArchiveOptions) (err error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	zipFile, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create zip file: %w", err)
	}
	defer func() {
		if closeErr := zipFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(dest)
		}
	}()

	zw := zip.NewWriter(zipFile)
	defer func() {
		if closeErr := zw.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return addZipEntry(zw, path, filepath.ToSlash(rel), info, opts)
	})
}

func addZipEntry(zw *zip.Writer, path, name string, info fs.FileInfo, opts ArchiveOptions) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create header for %s: %w", path, err)
	}
	header.Name = name
	if !opts.ModTime.IsZero() {
		header.Modified = opts.ModTime
	}

	switch {
	case info.IsDir():
		header.Name += "/"
		header.Method = zip.Store
		_, err := zw.CreateHeader(header)
		return err

	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return err
		}
		header.Method = zip.Store
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, target)
		return err

	case info.Mode().IsRegular():
		header.Method = zip.Deflate
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err

	default:
		// sockets, devices and pipes have no place in a layer
		return nil
	}
}

// Extract unpacks a zip archive below destDir, restoring permission bits and
// symlinks. Entries that would land outside destDir are rejected, as are
// symlinks pointing outside it and entries written through a symlink.
func Extract(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip %s: %w", archivePath, err)
	}
	defer r.Close()

	root := filepath.Clean(destDir)
	for _, f := range r.File {
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if !withinRoot(root, target) {
			return fmt.Errorf("zip entry %q escapes extraction directory", f.Name)
		}
		if err := checkNoSymlinks(root, target); err != nil {
			return fmt.Errorf("zip entry %q escapes extraction directory: %w", f.Name, err)
		}

		if err := extractEntry(root, f, target); err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func withinRoot(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}

// checkNoSymlinks fails when target, or any directory between root and
// target, is a symlink created by an earlier entry.
func checkNoSymlinks(root, target string) error {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return err
	}
	if rel == "." {
		return nil
	}

	current := root
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path passes through symlink %s", current)
		}
	}
	return nil
}

func extractEntry(root string, f *zip.File, target string) (err error) {
	mode := f.Mode()

	if mode.IsDir() || strings.HasSuffix(f.Name, "/") {
		return os.MkdirAll(target, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if mode&os.ModeSymlink != 0 {
		linkTarget, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		link := filepath.FromSlash(string(linkTarget))
		if filepath.IsAbs(link) || !withinRoot(root, filepath.Join(filepath.Dir(target), link)) {
			return fmt.Errorf("symlink target %q escapes extraction directory", string(linkTarget))
		}
		return os.Symlink(string(linkTarget), target)
	}

	perm := mode.Perm()
	if perm == 0 {
		// archives written without unix attributes
		perm = 0644
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(out, rc); err != nil {
		return err
	}

	// the umask may have stripped bits from the create call
	return out.Chmod(perm)
}

// copyFile copies src to dst byte for byte, keeping the permission bits.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Chmod(info.Mode().Perm())
}
