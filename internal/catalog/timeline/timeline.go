// Package timeline scans a WAL archive directory into per-timeline
// bookkeeping (spec.md 4.7), grounded on the file-classification and
// timeline-assembly half of catalog_get_timelines in
// original_source/src/catalog.c, and on the TimelineManager scanning
// patterns in the pack's PlusOne-dbbackup example.
package timeline

import (
	"bufio"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/cloudnative-pg/pgcatalog/internal/catalog/fio"
	"github.com/cloudnative-pg/pgcatalog/internal/catalog/model"
	"github.com/cloudnative-pg/pgcatalog/internal/logging"
)

var (
	segmentRE = regexp.MustCompile(`^([0-9A-Fa-f]{8})([0-9A-Fa-f]{8})([0-9A-Fa-f]{8})$`)
	gzSegRE   = regexp.MustCompile(`^([0-9A-Fa-f]{8})([0-9A-Fa-f]{8})([0-9A-Fa-f]{8})\.gz$`)
	backupRE  = regexp.MustCompile(`^([0-9A-Fa-f]{8})([0-9A-Fa-f]{8})([0-9A-Fa-f]{8})\.[0-9A-Fa-f]{8}\.backup$`)
	partialRE = regexp.MustCompile(`^([0-9A-Fa-f]{8})([0-9A-Fa-f]{8})([0-9A-Fa-f]{8})\.partial$`)
	historyRE = regexp.MustCompile(`^([0-9A-Fa-f]{8})\.history$`)
)

// Scan walks "<root>/wal/<instance>" and builds the timeline forest,
// then buckets backups (already loaded by the caller via
// scan.ListBackups) by TLI.
func Scan(fs fio.FS, root, instance string, bytesPerSegment uint64, backups []*model.Backup, log *logging.Logger) ([]*model.Timeline, error) {
	dir := filepath.Join(root, "wal", instance)
	names, err := listFilesSorted(fs, dir)
	if err != nil {
		return nil, nil
	}

	var result []*model.Timeline
	var current *model.Timeline

	pushCurrent := func() {
		if current != nil {
			result = append(result, current)
		}
	}

	for _, name := range names {
		path := filepath.Join(dir, name)

		if m := historyRE.FindStringSubmatch(name); m != nil {
			tli, _ := parseHex32(m[1])
			if err := applyHistory(fs, path, tli, &result, &current, pushCurrent); err != nil && log != nil {
				log.Warn().Str("file", name).Err(err).Msg("could not parse timeline history file")
			}
			continue
		}

		tli, segno, ftype, size, ok := classify(fs, dir, name, bytesPerSegment)
		if !ok {
			if log != nil {
				log.Warn().Str("file", name).Msg("unrecognised file in WAL archive, skipping")
			}
			continue
		}

		if current == nil || current.TLI != tli {
			pushCurrent()
			current = &model.Timeline{TLI: tli}
		}

		xf := &model.XlogFile{Path: path, Name: name, Size: size, SegNo: segno, Type: ftype}
		current.XlogFilelist = append(current.XlogFilelist, xf)

		if ftype != model.XlogSegment {
			continue
		}

		if current.NXlogFiles == 0 {
			current.BeginSegNo = segno
			current.EndSegNo = segno
		} else {
			expected := current.EndSegNo + 1
			if segno != expected && segno != current.EndSegNo {
				current.LostSegments = append(current.LostSegments, model.SegInterval{Begin: expected, End: segno - 1})
			}
			if segno > current.EndSegNo {
				current.EndSegNo = segno
			}
		}
		current.NXlogFiles++
		current.Size += size
	}
	pushCurrent()

	resolveParentLinks(result)
	bucketBackups(result, backups)

	return result, nil
}

func resolveParentLinks(timelines []*model.Timeline) {
	for _, t := range timelines {
		if t.ParentTLI == 0 {
			continue
		}
		for _, candidate := range timelines {
			if candidate.TLI == t.ParentTLI {
				t.ParentLink = candidate
				break
			}
		}
	}
}

func bucketBackups(timelines []*model.Timeline, backups []*model.Backup) {
	byTLI := make(map[uint32]*model.Timeline, len(timelines))
	for _, t := range timelines {
		byTLI[t.TLI] = t
	}
	for _, b := range backups {
		if t, ok := byTLI[b.TLI]; ok {
			t.Backups = append(t.Backups, b)
		}
	}
}

func classify(fs fio.FS, dir, name string, bytesPerSegment uint64) (tli uint32, segno model.SegNo, ftype model.XlogFileType, size int64, ok bool) {
	var m []string
	switch {
	case segmentRE.MatchString(name):
		m = segmentRE.FindStringSubmatch(name)
		ftype = model.XlogSegment
	case gzSegRE.MatchString(name):
		m = gzSegRE.FindStringSubmatch(name)
		ftype = model.XlogSegment
	case backupRE.MatchString(name):
		m = backupRE.FindStringSubmatch(name)
		ftype = model.XlogBackupHistoryFile
	case partialRE.MatchString(name):
		m = partialRE.FindStringSubmatch(name)
		ftype = model.XlogPartialSegment
	default:
		return 0, 0, 0, 0, false
	}

	tliN, err1 := parseHex32(m[1])
	logN, err2 := parseHex32(m[2])
	segN, err3 := parseHex32(m[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, 0, false
	}

	st, err := fs.Stat(filepath.Join(dir, name))
	if err == nil {
		size = st.Size
	}
	return tliN, model.SegNoFromLogSeg(logN, segN, bytesPerSegment), ftype, size, true
}

func applyHistory(fs fio.FS, path string, tli uint32, result *[]*model.Timeline, current **model.Timeline, pushCurrent func()) error {
	r, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		lines = append(lines, line)
	}

	// The history file lists ancestor timelines oldest-first and has no
	// line for tli itself. Counting tli's own entry as index 0 and the
	// ancestors newest-first after it, the parent (index 1) is the
	// file's last line.
	if len(lines) == 0 {
		return nil
	}

	parentLine := lines[len(lines)-1]
	fields := splitFields(parentLine)
	if len(fields) < 2 {
		return nil
	}
	parentTLI, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return err
	}
	switchpoint, err := model.ParseLSN(fields[1])
	if err != nil {
		return err
	}

	if *current == nil || (*current).TLI != tli {
		pushCurrent()
		*current = &model.Timeline{TLI: tli}
	}
	(*current).ParentTLI = uint32(parentTLI)
	(*current).Switchpoint = switchpoint
	return nil
}

func splitFields(s string) []string {
	var fields []string
	start := -1
	for i, c := range s {
		if c == ' ' || c == '\t' {
			if start >= 0 {
				fields = append(fields, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}
	return fields
}

func parseHex32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err
}

func listFilesSorted(fs fio.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names, nil
}
