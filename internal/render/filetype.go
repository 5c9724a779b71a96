package render

import (
	"path"
	"strings"
)

// Category is the broad class of a file.
type Category string

const (
	CategoryText        Category = "text"
	CategoryImage       Category = "image"
	CategoryAudio       Category = "audio"
	CategoryVideo       Category = "video"
	CategoryUnsupported Category = "unsupported"
)

// TypeInfo describes a file by its name.
type TypeInfo struct {
	Category    Category
	Language    string // empty for media and unknown files
	DisplayName string
}

// languages maps lowercase extensions to display names.
var languages = map[string]string{
	"js": "JavaScript", "mjs": "JavaScript", "cjs": "JavaScript", "jsx": "JavaScript JSX",
	"ts": "TypeScript", "mts": "TypeScript", "cts": "TypeScript", "tsx": "TypeScript JSX",
	"html": "HTML", "htm": "HTML", "css": "CSS", "scss": "SCSS", "sass": "Sass", "less": "Less",
	"vue": "Vue", "svelte": "Svelte", "astro": "Astro",
	"json": "JSON", "jsonc": "JSON with Comments", "json5": "JSON5",
	"yaml": "YAML", "yml": "YAML", "toml": "TOML", "xml": "XML", "csv": "CSV",
	"md": "Markdown", "mdx": "MDX", "markdown": "Markdown", "rst": "reStructuredText",
	"txt": "Plain Text", "text": "Plain Text",
	"py": "Python", "pyi": "Python Stub", "ipynb": "Jupyter Notebook",
	"rb": "Ruby", "rake": "Ruby", "gemspec": "Ruby", "erb": "ERB",
	"java": "Java", "kt": "Kotlin", "kts": "Kotlin Script", "scala": "Scala", "groovy": "Groovy",
	"gradle": "Gradle", "clj": "Clojure", "cljs": "ClojureScript",
	"c": "C", "h": "C Header", "cpp": "C++", "cc": "C++", "cxx": "C++", "hpp": "C++ Header",
	"cs": "C#", "fs": "F#", "vb": "Visual Basic",
	"go": "Go", "mod": "Go Module", "sum": "Go Sum",
	"rs": "Rust", "swift": "Swift", "m": "Objective-C", "mm": "Objective-C++",
	"php": "PHP",
	"sh": "Shell", "bash": "Bash", "zsh": "Zsh", "fish": "Fish", "ps1": "PowerShell", "bat": "Batch", "cmd": "Batch",
	"sql": "SQL",
	"ex": "Elixir", "exs": "Elixir", "erl": "Erlang", "hs": "Haskell", "lua": "Lua",
	"pl": "Perl", "pm": "Perl", "r": "R", "jl": "Julia", "dart": "Dart",
	"ini": "INI", "cfg": "Config", "conf": "Config", "env": "Environment", "properties": "Properties",
	"dockerfile": "Dockerfile", "tf": "Terraform", "hcl": "HCL",
	"graphql": "GraphQL", "gql": "GraphQL", "proto": "Protocol Buffer",
	"lock": "Lock File", "log": "Log", "diff": "Diff", "patch": "Patch",
	"sol": "Solidity", "asm": "Assembly", "s": "Assembly", "mk": "Makefile",
	"zig": "Zig", "nim": "Nim", "ml": "OCaml",
}

// filenames maps lowercase base names, with or without extension, to display names.
var filenames = map[string]string{
	"dockerfile": "Dockerfile", ".dockerignore": "Ignore List",
	"makefile": "Makefile", "gnumakefile": "Makefile", "cmakelists.txt": "CMake",
	"rakefile": "Ruby", "gemfile": "Ruby", "vagrantfile": "Ruby", "procfile": "Procfile",
	".gitignore": "Ignore List", ".npmignore": "Ignore List", ".prettierignore": "Ignore List",
	".gitattributes": "Git Attributes", ".gitmodules": "Git Modules",
	".editorconfig": "EditorConfig", ".prettierrc": "Prettier Config", ".eslintrc": "ESLint Config",
	".npmrc": "NPM Config", ".nvmrc": "NVM Config", ".tool-versions": "asdf Config",
	".env": "Environment", ".env.local": "Environment", ".env.example": "Environment",
	"tsconfig.json": "TypeScript Config", "package.json": "NPM Package", "package-lock.json": "NPM Lock",
	"yarn.lock": "Yarn Lock", "pnpm-lock.yaml": "PNPM Lock",
	"cargo.toml": "Cargo", "cargo.lock": "Cargo Lock",
	"go.mod": "Go Module", "go.sum": "Go Sum",
	"requirements.txt": "Python Requirements", "pyproject.toml": "Python Project",
	"license": "License", "readme": "README", "readme.md": "README",
	"changelog": "Changelog", "changelog.md": "Changelog", "contributing.md": "Contributing",
}

var imageExts = setOf("png", "jpg", "jpeg", "gif", "bmp", "webp", "svg", "ico", "tiff", "tif",
	"avif", "heic", "heif", "raw", "psd")

var audioExts = setOf("mp3", "wav", "ogg", "flac", "aac", "m4a", "wma", "opus", "aiff", "mid", "midi")

// "ts" and "mts" are TypeScript here, not MPEG transport streams.
var videoExts = setOf("mp4", "webm", "mov", "avi", "mkv", "flv", "wmv", "m4v", "mpeg", "mpg",
	"3gp", "ogv", "m2ts", "vob")

func setOf(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, s := range items {
		m[s] = struct{}{}
	}
	return m
}

// extension returns the lowercase extension of the base name, or "" for
// dotfiles, names without a dot and names ending in a dot.
func extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// Detect classifies p by extension and file name. Media extensions are
// checked first, then full file names, then names without extension, then
// language extensions.
func Detect(p string) TypeInfo {
	name := strings.ToLower(path.Base(p))
	ext := extension(name)

	if ext != "" {
		if _, ok := imageExts[ext]; ok {
			return TypeInfo{Category: CategoryImage, DisplayName: "Image"}
		}
		if _, ok := audioExts[ext]; ok {
			return TypeInfo{Category: CategoryAudio, DisplayName: "Audio"}
		}
		if _, ok := videoExts[ext]; ok {
			return TypeInfo{Category: CategoryVideo, DisplayName: "Video"}
		}
	}

	if lang, ok := filenames[name]; ok {
		return TypeInfo{Category: CategoryText, Language: lang, DisplayName: lang}
	}
	if ext != "" {
		if lang, ok := filenames[strings.TrimSuffix(name, "."+ext)]; ok {
			return TypeInfo{Category: CategoryText, Language: lang, DisplayName: lang}
		}
		if lang, ok := languages[ext]; ok {
			return TypeInfo{Category: CategoryText, Language: lang, DisplayName: lang}
		}
	}
	return TypeInfo{Category: CategoryUnsupported, DisplayName: "Unknown"}
}

// IsText reports whether p is a known text file.
func IsText(p string) bool {
	return Detect(p).Category == CategoryText
}
