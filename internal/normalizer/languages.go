package normalizer

import (
	"path/filepath"
	"sort"
	"strings"
)

// extensionLanguages maps file extensions to language names, used to derive
// the per-commit touched-language set from changed files.
var extensionLanguages = map[string]string{
	".ts": "TypeScript", ".tsx": "TypeScript", ".js": "JavaScript", ".jsx": "JavaScript",
	".py": "Python", ".rs": "Rust", ".go": "Go", ".java": "Java", ".rb": "Ruby",
	".cpp": "C++", ".c": "C", ".cs": "C#", ".swift": "Swift", ".kt": "Kotlin",
	".sol": "Solidity", ".vue": "Vue", ".svelte": "Svelte", ".php": "PHP",
	".css": "CSS", ".scss": "SCSS", ".html": "HTML", ".sql": "SQL",
	".sh": "Shell", ".yml": "YAML", ".yaml": "YAML", ".json": "JSON",
	".md": "Markdown", ".toml": "TOML", ".dockerfile": "Docker",
}

// languagesFromFiles extracts the distinct set of languages touched by a
// change set, keyed on file extension. The result is sorted for
// deterministic output.
func languagesFromFiles(filenames []string) []string {
	seen := make(map[string]bool)
	for _, name := range filenames {
		ext := strings.ToLower(filepath.Ext(name))
		if ext == "" {
			// Extensionless files like Dockerfile match on the name itself.
			ext = "." + strings.ToLower(filepath.Base(name))
		}
		if lang, ok := extensionLanguages[ext]; ok {
			seen[lang] = true
		}
	}

	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
