package scan

import "sort"

// DuplicateGroup represents a set of files with identical content, usually
// the same copy deck saved under several names.
type DuplicateGroup struct {
	SHA256 string     `json:"sha256"`
	Size   int64      `json:"size"`
	Files  []FileInfo `json:"files"`
}

// DedupeResult holds duplicate detection results.
type DedupeResult struct {
	Groups     []DuplicateGroup `json:"groups"`
	TotalDupes int              `json:"totalDuplicates"`
}

// FindDuplicates identifies files with identical content by SHA-256 hash.
// Files must have been scanned with WithHash.
func FindDuplicates(files []FileInfo) *DedupeResult {
	hashGroups := make(map[string][]FileInfo)
	for _, f := range files {
		if f.SHA256 == "" {
			continue
		}
		hashGroups[f.SHA256] = append(hashGroups[f.SHA256], f)
	}

	result := &DedupeResult{}
	for hash, group := range hashGroups {
		if len(group) < 2 {
			continue
		}
		result.Groups = append(result.Groups, DuplicateGroup{
			SHA256: hash,
			Size:   group[0].Size,
			Files:  group,
		})
		result.TotalDupes += len(group) - 1
	}

	sort.Slice(result.Groups, func(i, j int) bool {
		return result.Groups[i].Files[0].Path < result.Groups[j].Files[0].Path
	})

	return result
}
