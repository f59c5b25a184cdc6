package noteservice

import (
	"context"
	"fmt"
)

// SeedIfEmpty populates a brand-new store with the sample folders and notes
// a first-time user sees. It does nothing when any notes or folders exist.
func (s *Service) SeedIfEmpty(ctx context.Context) error {
	s.mu.RLock()
	empty := len(s.notes) == 0 && len(s.folders) == 0
	s.mu.RUnlock()
	if !empty {
		return nil
	}

	folders := []string{"Personal", "Work", "Ideas"}
	folderIDs := make(map[string]int64, len(folders))
	for _, name := range folders {
		f, err := s.CreateFolder(ctx, name, nil)
		if err != nil {
			return fmt.Errorf("noteservice: seed folder %s: %w", name, err)
		}
		folderIDs[name] = f.ID
	}

	samples := []struct {
		title, content, folder string
		tags                   []string
	}{
		{
			title:   "Project Ideas",
			content: "Here are some ideas for the new project.\n\n- [ ] sketch the data model\n- [ ] pick a name",
			folder:  "Work",
			tags:    []string{"work", "ideas"},
		},
		{
			title:   "Grocery List",
			content: "- [ ] Milk\n- [ ] Eggs\n- [ ] Bread\n- [x] Butter",
			folder:  "Personal",
			tags:    []string{"personal"},
		},
		{
			title:   "Meeting Notes",
			content: "Discussed the Q4 roadmap. Key takeaways:\n\n1. Focus on performance\n2. Ship the backup flow",
			folder:  "Work",
			tags:    []string{"work"},
		},
		{
			title:   "Welcome",
			content: "Welcome to your notes. Pin the ones you reach for often, drop tasks in with `- [ ]`, and tag lines with #labels.",
			folder:  "Ideas",
			tags:    []string{"ideas"},
		},
	}

	for _, sample := range samples {
		folderID := folderIDs[sample.folder]
		n, err := s.CreateNoteFromFile(ctx, sample.title, sample.content, &folderID)
		if err != nil {
			return fmt.Errorf("noteservice: seed note %s: %w", sample.title, err)
		}
		tags := sample.tags
		if _, err := s.UpdateNote(ctx, n.ID, NotePatch{Tags: &tags}); err != nil {
			return err
		}
	}
	return nil
}
