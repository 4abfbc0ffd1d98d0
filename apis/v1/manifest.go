package v1

const ArchiveKind = "Archive"

// Archive is a manifest describing an archive to build.
type Archive struct {
	Kind     string      `yaml:"kind" json:"kind" validate:"required,eq=Archive"`
	Metadata Metadata    `yaml:"metadata" json:"metadata"`
	Spec     ArchiveSpec `yaml:"spec" json:"spec"`
}

type Metadata struct {
	Name   string            `yaml:"name" json:"name" validate:"required"`
	Labels map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
}

type ArchiveSpec struct {
	// Format is one of zip, tar or 7z.
	Format  string          `yaml:"format" json:"format" validate:"required,oneof=zip tar 7z" template:""`
	Options *ArchiveOptions `yaml:"options,omitempty" json:"options,omitempty"`
	Entries []EntrySpec     `yaml:"entries" json:"entries" validate:"dive"`
	Output  *OutputSpec     `yaml:"output,omitempty" json:"output,omitempty"`
}

type ArchiveOptions struct {
	// Method selects the compression method: deflate, store or zstd for zip,
	// deflate, copy or zstd for 7z. Ignored for tar.
	Method string `yaml:"method,omitempty" json:"method,omitempty" validate:"omitempty,oneof=deflate store copy zstd"`
	// MaxEntrySize caps the content size of a single entry. Zero disables it.
	MaxEntrySize int64 `yaml:"max_entry_size,omitempty" json:"max_entry_size,omitempty" validate:"gte=0"`
}

// EntrySpec is one archive member. Exactly one of File or Directory is set.
type EntrySpec struct {
	File      *FileEntrySpec      `yaml:"file,omitempty" json:"file,omitempty" validate:"required_without=Directory,excluded_with=Directory"`
	Directory *DirectoryEntrySpec `yaml:"directory,omitempty" json:"directory,omitempty" validate:"required_without=File,excluded_with=File"`
}

// FileEntrySpec is a file whose content is either inline or read from Source.
type FileEntrySpec struct {
	Name    string  `yaml:"name" json:"name" validate:"required" template:""`
	Content *string `yaml:"content,omitempty" json:"content,omitempty" validate:"excluded_with=Source" template:"-"`
	// Source is a location: a local path, s3://bucket/key or http(s)://...
	Source *string `yaml:"source,omitempty" json:"source,omitempty" validate:"excluded_with=Content" template:""`
}

type DirectoryEntrySpec struct {
	Name string `yaml:"name" json:"name" validate:"required" template:""`
}

// OutputSpec configures where the archive is written (one of the fields should be set).
// Defaults to stdout.
type OutputSpec struct {
	Filesystem *FilesystemOutputSpec `yaml:"filesystem,omitempty" json:"filesystem,omitempty"`
	S3         *S3OutputSpec         `yaml:"s3,omitempty" json:"s3,omitempty"`
	Stdout     *StdoutOutputSpec     `yaml:"stdout,omitempty" json:"stdout,omitempty"`
}

type FilesystemOutputSpec struct {
	// Path is the archive file to create. Parent directories are created.
	Path string `yaml:"path" json:"path" validate:"required" template:""`
}

type S3OutputSpec struct {
	Bucket         string         `yaml:"bucket" json:"bucket" validate:"required" template:""`
	Key            string         `yaml:"key" json:"key" validate:"required" template:""`
	Region         *string        `yaml:"region,omitempty" json:"region,omitempty" template:""`
	Endpoint       *string        `yaml:"endpoint,omitempty" json:"endpoint,omitempty" template:""`
	ForcePathStyle bool           `yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`
	Credentials    *S3Credentials `yaml:"credentials,omitempty" json:"credentials,omitempty"`
}

type S3Credentials struct {
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id" validate:"required" template:""`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key" validate:"required" template:""`
}

// StdoutOutputSpec configures stdout output (no options currently).
type StdoutOutputSpec struct{}
