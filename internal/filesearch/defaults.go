package filesearch

// IgnoreFileName is the root-level ignore file read by NewExclusionFilter.
const IgnoreFileName = ".gitignore"

// vcsDirs are always ignored, regardless of negations in the ignore file.
var vcsDirs = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
}

// defaultPatterns are appended after the root ignore file patterns, in this order.
// Trailing "/" marks a directory-only pattern.
var defaultPatterns = []string{
	// Version control
	".git/",
	".svn/",
	".hg/",

	// Build output
	"target/",
	"build/",
	"dist/",
	"out/",
	"bin/",
	"obj/",

	// Dependencies
	"node_modules/",
	"vendor/",
	"bower_components/",
	".cargo/",
	"__pycache__/",
	".venv/",

	// IDE / editor
	".vscode/",
	".idea/",
	".vs/",
	"*.swp",
	"*.swo",
	"*~",

	// OS files
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
}

// defaultExcludeExtensions are binary or generated extensions hidden from results.
var defaultExcludeExtensions = []string{
	"exe", "dll", "so", "dylib", "a", "o", "obj", "bin",
	"class", "jar", "war", "pyc", "pyo", "pyd",
}
