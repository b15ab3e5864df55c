package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchVersion Phase = iota
	FetchCategories
	FetchLibrary
	FetchPlaylists
	SyncCache
	UploadFiles
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchVersion:
		return "fetch_version"
	case FetchCategories:
		return "fetch_categories"
	case FetchLibrary:
		return "fetch_library"
	case FetchPlaylists:
		return "fetch_playlists"
	case SyncCache:
		return "sync_cache"
	case UploadFiles:
		return "upload_files"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func endpointUpdate(phase Phase, step, total int, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: message,
	}
}

func fetchPageUpdate(page, totalPages, entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Step:    page,
		Total:   totalPages,
		Message: fmt.Sprintf("[%d/%d] Fetching library page (%d entries so far)...", page, totalPages, entries),
	}
}

func syncCacheUpdate(step, total int, message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncCache,
		Step:    step,
		Total:   total,
		Message: message,
	}
}

func uploadingUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Uploading: %s...", step, total, path),
	}
}

func uploadCompletedUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, path),
	}
}

func uploadFailedUpdate(step, total int, path string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UploadFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, path, err),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
