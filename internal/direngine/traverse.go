package direngine

import "path"

// Traverse implements spec.md §4.4.3: a recursive preloaded listing whose
// entries span the subtree rooted at hostPath, with root-relative entry
// names so clients can reconstruct full paths. Filtering and maxResults
// apply across the whole traversal; sort, if requested, applies to the
// flattened result.
func Traverse(lister Lister, hostPath, relPath string, dirOpts, sortOpts byte, maxResults int, pat string) (*EntryList, error) {
	var all []Entry
	if err := traverseInto(lister, hostPath, relPath, dirOpts, pat, maxResults, &all); err != nil {
		return nil, err
	}

	if sortOpts&DirsortNone == 0 {
		sortEntries(all, sortOpts)
	}
	return NewEntryList(all), nil
}

func traverseInto(lister Lister, hostPath, relPath string, dirOpts byte, pat string, maxResults int, acc *[]Entry) error {
	stats, err := lister.ListDir(hostPath)
	if err != nil {
		return err
	}
	for _, si := range stats {
		if maxResults > 0 && len(*acc) >= maxResults {
			return nil
		}
		if !patternOK(si, dirOpts, pat) {
			continue
		}
		if dirOpts&DiroptNoSkipHidden == 0 && si.IsHidden {
			continue
		}
		if dirOpts&DiroptNoSkipSpecial == 0 && si.IsSpecial {
			continue
		}
		if dirOpts&DiroptNoFolders != 0 && si.IsDir {
			continue
		}

		childRel := path.Join(relPath, si.Name)
		e := entryFromStat(si)
		e.Name = childRel
		*acc = append(*acc, e)

		if si.IsDir {
			childHost := hostJoin(hostPath, si.Name)
			if err := traverseInto(lister, childHost, childRel, dirOpts, pat, maxResults, acc); err != nil {
				return err
			}
		}
	}
	return nil
}

func hostJoin(hostPath, name string) string {
	return path.Join(hostPath, name)
}
