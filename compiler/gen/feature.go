package gen

import (
	"os"
	"path/filepath"
)

var (
	// FeatureRespectPrimaryKeyAttributes types implicit connection fields and
	// secondary index partition keys after the primary key they point at,
	// and creates one connection field per primary key attribute. Without it
	// connection fields are a single ID named after "id".
	FeatureRespectPrimaryKeyAttributes = Feature{
		Name:        "respectprimarykey",
		Stage:       Stable,
		Default:     false,
		Description: "Implicit connection fields follow the name and type of the related primary key attributes",
	}

	// FeatureSync marks the schema as used with real-time sync. Models may not
	// then link each other with @hasOne/@hasMany on both sides.
	FeatureSync = Feature{
		Name:        "sync",
		Stage:       Beta,
		Default:     false,
		Description: "Rejects relations the sync engine cannot reconcile, such as @hasOne on both sides",
	}

	// FeatureIndexShapeCheck rejects a generated secondary index whose name
	// is already taken by an index of a different key shape.
	FeatureIndexShapeCheck = Feature{
		Name:        "indexshape",
		Stage:       Stable,
		Default:     true,
		Description: "Fails compilation when a relation reuses an index name with a different key schema",
	}

	// FeatureBindings writes a Go file with table, index and key attribute
	// constants next to the other artifacts.
	FeatureBindings = Feature{
		Name:        "bindings",
		Stage:       Alpha,
		Default:     false,
		Description: "Generates Go constants for tables, indexes and condensed key attributes",
		cleanup: func(c *Config) error {
			return remove(c.Target, BindingsFile)
		},
	}

	// AllFeatures holds a list of all feature-flags.
	AllFeatures = []Feature{
		FeatureRespectPrimaryKeyAttributes,
		FeatureSync,
		FeatureIndexShapeCheck,
		FeatureBindings,
	}
)

// FeatureStage describes the stage of the codegen feature.
type FeatureStage int

const (
	_ FeatureStage = iota

	// Experimental features are in development.
	Experimental

	// Alpha features are complete but their output may still change.
	Alpha

	// Beta features are documented and not expected to change.
	Beta

	// Stable features are Beta features that have been used for a while.
	Stable
)

// String returns the stage name.
func (s FeatureStage) String() string {
	switch s {
	case Experimental:
		return "experimental"
	case Alpha:
		return "alpha"
	case Beta:
		return "beta"
	case Stable:
		return "stable"
	default:
		return "unknown"
	}
}

// A Feature of the relgen compiler.
type Feature struct {
	// Name of the feature.
	Name string

	// Stage of the feature.
	Stage FeatureStage

	// Default values indicates if this feature is enabled by default.
	Default bool

	// A Description of this feature.
	Description string

	// cleanup removes artifacts of the feature when it is disabled.
	cleanup func(*Config) error
}

// FeatureByName returns the feature with the given name.
func FeatureByName(name string) (Feature, bool) {
	for _, f := range AllFeatures {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// remove file (if exists) and its dir if it's empty.
func remove(dir, file string) error {
	if err := os.Remove(filepath.Join(dir, file)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	infos, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return os.Remove(dir)
	}
	return nil
}
