// Command dumpbundle extracts every object from an asset bundle's embedded
// serialized files and writes each one as a pair of JSON and YAML documents
// under an output directory, one pair per object.
package main

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/go-unity/ubundle"
	"github.com/go-unity/ubundle/typetree"
)

func parseUnityCNKey(s string) ([16]byte, error) {
	var key [16]byte

	raw, err := hex.DecodeString(s)
	if err != nil {
		return key, fmt.Errorf("invalid hex: %w", err)
	}
	if len(raw) != len(key) {
		return key, fmt.Errorf("want %d bytes, got %d", len(key), len(raw))
	}

	copy(key[:], raw)
	return key, nil
}

func main() {
	outDir := flag.String("out", "dump", "directory to write decoded objects into")
	fallbackRevision := flag.String("fallback-revision", "2019.4.0f1", "engine revision to use when a header's is empty or \"0.0.0\"")
	unitycnKeyHex := flag.String("unitycn-key", "", "16-byte UnityCN archive key, hex-encoded")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Println("Usage: dumpbundle [flags] <bundle-file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := ubundle.Config{
		FallbackEngineRevision: *fallbackRevision,
		EnableLZMA:             true,
		EnableLZ4:              true,
	}
	if *unitycnKeyHex != "" {
		key, err := parseUnityCNKey(*unitycnKeyHex)
		if err != nil {
			log.Fatalf("unitycn-key: %v", err)
		}
		cfg.UnityCNKey = &key
		cfg.EnableEncryption = true
	}

	f, err := os.Open(args[0])
	if err != nil {
		log.Fatalf("open %s: %v", args[0], err)
	}
	defer f.Close()

	b, err := ubundle.Open(f, cfg)
	if err != nil {
		log.Fatalf("parse bundle: %v", err)
	}

	for _, entry := range b.Directory() {
		sf, err := b.SerializedFile(entry)
		if err != nil {
			// Not every FileEntry is a serialized file — resource data and
			// raw assets share the same directory — so this is expected
			// and not fatal to the rest of the bundle.
			fmt.Printf("skipping %s: not a serialized file (%v)\n", entry.Path, err)
			continue
		}

		entryDir := filepath.Join(*outDir, entry.Path)
		for _, obj := range sf.Objects {
			value, err := sf.ReadObject(b.SectionReader(entry), obj)
			if err != nil {
				log.Printf("%s: object %d: %v", entry.Path, obj.PathID, err)
				continue
			}

			dumpObject(entryDir, obj.PathID, value)
		}
	}
}

// dumpObject writes one object's decoded value as "<pathID>[_<name>].json"
// and ".yaml" under dir, deriving the name suffix from an m_Name field when
// the object's root value is a Class that carries one.
func dumpObject(dir string, pathID int64, value ubundle.Value) {
	name := objectName(pathID, value)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("mkdir %s: %v", dir, err)
		return
	}

	base := filepath.Join(dir, name)

	jsonBytes, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		log.Printf("%s: marshal json: %v", base, err)
	} else if err := os.WriteFile(base+".json", jsonBytes, 0o644); err != nil {
		log.Printf("%s: write json: %v", base, err)
	}

	yamlBytes, err := yaml.Marshal(value)
	if err != nil {
		log.Printf("%s: marshal yaml: %v", base, err)
	} else if err := os.WriteFile(base+".yaml", yamlBytes, 0o644); err != nil {
		log.Printf("%s: write yaml: %v", base, err)
	}

	fmt.Println(base)
}

func objectName(pathID int64, value ubundle.Value) string {
	if c, ok := value.(*typetree.Class); ok {
		if v, ok := c.Get("m_Name"); ok {
			if s, ok := v.(typetree.String); ok && s != "" {
				return fmt.Sprintf("%d_%s", pathID, string(s))
			}
		}
	}

	return fmt.Sprintf("%d", pathID)
}
