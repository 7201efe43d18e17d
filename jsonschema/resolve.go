// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// This file deals with linking $ref values to the schemas they denote.

package jsonschema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// ResolveOptions are options for [NewResolver] and [Load].
type ResolveOptions struct {
	// Fetcher loads documents named by references that are not local to
	// the current document. If nil, [DefaultFetcher] is used.
	Fetcher Fetcher
	// MaxDepth bounds how many references may be followed in a chain,
	// and how deeply documents may load other documents.
	// If zero, 32 is used.
	MaxDepth int
	// CheckMetaSchema validates every fetched document against the
	// draft-4 meta-schema before it is used.
	CheckMetaSchema bool
	// Logger receives debug records about document loading.
	// If nil, nothing is logged.
	Logger *slog.Logger
}

const defaultMaxDepth = 32

// A Resolver links the $ref values of schemas to their targets.
// Documents loaded through a Resolver are cached for its lifetime, so one
// Resolver should be used for a set of related documents.
//
// A Resolver is safe for concurrent use. Its operations run one at a
// time, so a document is never seen by a caller before all of its
// references are linked. Resolution mutates the schemas it is given;
// callers must not validate a schema while it is being resolved.
type Resolver struct {
	opts ResolveOptions

	// mu is held for the whole of each exported operation.
	mu sync.Mutex
	// documents by canonical location. A document is added before its own
	// references are resolved, so documents that refer to each other
	// see each other while loading.
	documents map[string]*Schema
	// all document roots, including those without a location, in the
	// order they were added
	roots []*Schema
	// targets of resolved references
	refs map[docPointer]*Schema
	// schemas decoded from extension keywords
	extensions map[docPointer]*Schema
}

// A docPointer is a JSON pointer within a particular document.
type docPointer struct {
	doc     *Schema
	pointer string
}

// NewResolver returns a Resolver with the given options.
// A nil opts is equivalent to a zero ResolveOptions.
func NewResolver(opts *ResolveOptions) *Resolver {
	r := &Resolver{
		documents:  map[string]*Schema{},
		refs:       map[docPointer]*Schema{},
		extensions: map[docPointer]*Schema{},
	}
	if opts != nil {
		r.opts = *opts
	}
	if r.opts.Fetcher == nil {
		r.opts.Fetcher = DefaultFetcher()
	}
	if r.opts.MaxDepth <= 0 {
		r.opts.MaxDepth = defaultMaxDepth
	}
	if r.opts.Logger == nil {
		r.opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// Load fetches the document at location, parses it, and resolves all of its
// references, loading other documents as needed.
func Load(ctx context.Context, location string, opts *ResolveOptions) (*Schema, error) {
	return NewResolver(opts).Load(ctx, location)
}

// Load returns the resolved document at location, fetching it on first use.
func (r *Resolver) Load(ctx context.Context, location string) (_ *Schema, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.discardOnError(len(r.roots), &err)
	doc, err := r.load(ctx, canonicalLocation("", location), 0)
	if err != nil {
		return nil, err
	}
	if err := r.checkCycles(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ResolveSchema resolves every reference in the document rooted at root.
// References to other documents are resolved relative to root.DocumentPath.
// After linking, each reference chain is checked to end in a schema with
// content; a chain that loops is reported as a [*CyclicReferenceError].
//
// Resolving a schema that is already resolved does nothing.
func (r *Resolver) ResolveSchema(ctx context.Context, root *Schema) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.discardOnError(len(r.roots), &err)
	if !slices.Contains(r.roots, root) {
		r.addDocument(root)
	}
	if err := r.resolveDocument(ctx, root, 0); err != nil {
		return err
	}
	return r.checkCycles()
}

// ResolveReference returns the schema that ref denotes, interpreted in the
// document containing from. The result is cached, so resolving the same
// reference again returns the same schema.
// It does not modify from.
func (r *Resolver) ResolveReference(ctx context.Context, from *Schema, ref string) (_ *Schema, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.discardOnError(len(r.roots), &err)
	doc := r.documentOf(from)
	target, _, err := r.resolveRef(ctx, doc, ref, 0)
	if err != nil {
		return nil, err
	}
	return target, nil
}

// Documents returns the roots of all documents known to r, in the
// order they were added.
func (r *Resolver) Documents() []*Schema {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.roots)
}

func (r *Resolver) addDocument(doc *Schema) {
	if doc.DocumentPath != "" {
		key := canonicalLocation("", doc.DocumentPath)
		if _, ok := r.documents[key]; !ok {
			r.documents[key] = doc
		}
	}
	r.roots = append(r.roots, doc)
}

// discardOnError forgets the documents added after the first n roots,
// and the references resolved into them, if *err is set. A failed
// operation thus leaves no partly resolved document behind for the next.
func (r *Resolver) discardOnError(n int, err *error) {
	if *err == nil || len(r.roots) == n {
		return
	}
	dropped := map[*Schema]bool{}
	for _, doc := range r.roots[n:] {
		if doc.DocumentPath != "" {
			key := canonicalLocation("", doc.DocumentPath)
			if r.documents[key] == doc {
				delete(r.documents, key)
			}
		}
		for s := range doc.All() {
			dropped[s] = true
		}
	}
	r.roots = r.roots[:n]
	for k, s := range r.refs {
		if dropped[k.doc] || dropped[s] {
			delete(r.refs, k)
		}
	}
	for k := range r.extensions {
		if dropped[k.doc] {
			delete(r.extensions, k)
		}
	}
}

// documentOf returns the root of the document that contains s.
// Schemas that are not part of a known document are treated as roots.
func (r *Resolver) documentOf(s *Schema) *Schema {
	for _, doc := range r.roots {
		for n := range doc.All() {
			if n == s {
				return doc
			}
		}
	}
	return s
}

// resolveDocument links the references of every schema in doc.
func (r *Resolver) resolveDocument(ctx context.Context, doc *Schema, depth int) error {
	return r.resolveTree(ctx, doc, doc, depth)
}

// resolveTree links the references in the tree rooted at top, which is
// part of doc.
func (r *Resolver) resolveTree(ctx context.Context, doc, top *Schema, depth int) error {
	for s := range top.All() {
		if s.Ref == "" || s.reference != nil {
			continue
		}
		target, _, err := r.resolveRef(ctx, doc, s.Ref, depth)
		if err != nil {
			return err
		}
		s.reference = target
	}
	return nil
}

// resolveRef returns the schema ref denotes relative to doc, along with the
// root of the document containing it.
func (r *Resolver) resolveRef(ctx context.Context, doc *Schema, ref string, depth int) (*Schema, *Schema, error) {
	if depth > r.opts.MaxDepth {
		return nil, nil, fmt.Errorf("resolving %q: %w", ref, ErrMaxDepth)
	}
	loc, frag, _ := strings.Cut(ref, "#")
	target := doc
	if loc != "" {
		abs := canonicalLocation(doc.DocumentPath, loc)
		var err error
		target, err = r.load(ctx, abs, depth+1)
		if err != nil {
			return nil, nil, err
		}
	}
	key := docPointer{target, frag}

	if cached, ok := r.refs[key]; ok {
		r.opts.Logger.Debug("reference cache hit", "ref", ref)
		return cached, target, nil
	}

	s, sdoc, err := r.walk(ctx, target, frag, ref, depth)
	if err != nil {
		return nil, nil, err
	}
	r.refs[key] = s
	return s, sdoc, nil
}

// load returns the document at the canonical location loc, fetching,
// parsing and resolving it if it is not already known.
func (r *Resolver) load(ctx context.Context, loc string, depth int) (*Schema, error) {
	if depth > r.opts.MaxDepth {
		return nil, fmt.Errorf("loading %s: %w", loc, ErrMaxDepth)
	}
	if doc, ok := r.documents[loc]; ok {
		return doc, nil
	}

	data, err := r.opts.Fetcher.Fetch(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", loc, err)
	}
	if r.opts.CheckMetaSchema {
		if err := CheckMetaSchema(data); err != nil {
			return nil, fmt.Errorf("%s: %w", loc, err)
		}
	}
	doc, err := Parse(data, loc)
	if err != nil {
		return nil, err
	}
	r.addDocument(doc)
	r.opts.Logger.Debug("loaded schema document", "location", loc, "bytes", len(data))

	if err := r.resolveDocument(ctx, doc, depth); err != nil {
		return nil, err
	}
	return doc, nil
}

// walk follows the JSON pointer frag from the root of doc.
// A fragment that is not a pointer names a schema by its id.
func (r *Resolver) walk(ctx context.Context, doc *Schema, frag, ref string, depth int) (*Schema, *Schema, error) {
	if frag == "" {
		return doc, doc, nil
	}
	if frag[0] != '/' {
		for s := range doc.All() {
			if s.ID == "#"+frag || s.ID == frag {
				return s, doc, nil
			}
		}
		return nil, nil, &ReferenceNotFoundError{Ref: ref, Document: doc.DocumentPath, Segment: frag}
	}

	segs := strings.Split(frag[1:], "/")
	for i, seg := range segs {
		if u, err := url.PathUnescape(seg); err == nil {
			seg = u
		}
		segs[i] = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
	}

	cur, curDoc := doc, doc
	for i := 0; i < len(segs); {
		next, n, err := r.step(ctx, cur, curDoc, segs, i, ref, depth)
		if err == nil {
			cur, i = next, i+n
			continue
		}
		var nf *ReferenceNotFoundError
		if !errors.As(err, &nf) || !cur.HasReference() {
			return nil, nil, err
		}
		// The segment may be found in the schema that cur refers to.
		actual, adoc, ferr := r.follow(ctx, cur, curDoc, depth)
		if ferr != nil {
			return nil, nil, ferr
		}
		cur, curDoc = actual, adoc
	}
	return cur, curDoc, nil
}

// step follows the pointer segment segs[i] from cur, along with the segment
// after it when the keyword holds a collection. It returns the schema reached
// and the number of segments consumed.
func (r *Resolver) step(ctx context.Context, cur, doc *Schema, segs []string, i int, ref string, depth int) (*Schema, int, error) {
	notFound := func(seg string) error {
		return &ReferenceNotFoundError{Ref: ref, Document: doc.DocumentPath, Segment: seg}
	}
	seg := segs[i]
	arg := func() (string, error) {
		if i+1 >= len(segs) {
			return "", notFound(seg)
		}
		return segs[i+1], nil
	}
	switch seg {
	case "properties":
		name, err := arg()
		if err != nil {
			return nil, 0, err
		}
		if p := cur.Property(name); p != nil {
			return p, 2, nil
		}
		return nil, 0, notFound(name)
	case "items":
		if cur.ItemsArray == nil {
			if cur.Items == nil {
				return nil, 0, notFound(seg)
			}
			return cur.Items, 1, nil
		}
		idx, err := arg()
		if err != nil {
			return nil, 0, err
		}
		if s := indexSchemas(cur.ItemsArray, idx); s != nil {
			return s, 2, nil
		}
		return nil, 0, notFound(idx)
	}

	sf, ok := schemaFieldMap[seg]
	if !ok {
		v, ok := cur.Extra[seg]
		if !ok {
			return nil, 0, notFound(seg)
		}
		s, err := r.extension(ctx, doc, v, segs[:i+1], segs[i+1:], ref, depth)
		return s, len(segs) - i, err
	}
	fv := reflect.ValueOf(cur).Elem().FieldByIndex(sf.Index)
	switch sf.Type {
	case schemaType:
		if s := fv.Interface().(*Schema); s != nil {
			return s, 1, nil
		}
		return nil, 0, notFound(seg)
	case schemaSliceType:
		idx, err := arg()
		if err != nil {
			return nil, 0, err
		}
		if s := indexSchemas(fv.Interface().([]*Schema), idx); s != nil {
			return s, 2, nil
		}
		return nil, 0, notFound(idx)
	default: // schemaMapType
		key, err := arg()
		if err != nil {
			return nil, 0, err
		}
		if s := fv.Interface().(map[string]*Schema)[key]; s != nil {
			return s, 2, nil
		}
		return nil, 0, notFound(key)
	}
}

// follow returns the first schema in the reference chain starting at s
// that is not a reference, resolving references on the way.
func (r *Resolver) follow(ctx context.Context, s, doc *Schema, depth int) (*Schema, *Schema, error) {
	var seen map[*Schema]bool
	var refs []string
	for s.HasReference() {
		if seen == nil {
			seen = map[*Schema]bool{}
		}
		refs = append(refs, s.Ref)
		if seen[s] {
			return nil, nil, &CyclicReferenceError{Refs: refs}
		}
		seen[s] = true
		if s.reference == nil {
			target, tdoc, err := r.resolveRef(ctx, doc, s.Ref, depth+1)
			if err != nil {
				return nil, nil, err
			}
			s.reference = target
			s, doc = target, tdoc
			continue
		}
		s = s.reference
	}
	return s, doc, nil
}

// extension decodes the value of an unknown keyword, or a value nested
// inside one, as a schema. The decoded schema is kept so later references
// to the same location get the same schema.
func (r *Resolver) extension(ctx context.Context, doc *Schema, v any, walked, rest []string, ref string, depth int) (*Schema, error) {
	for _, seg := range rest {
		walked = append(walked, seg)
		switch x := v.(type) {
		case map[string]any:
			var ok bool
			if v, ok = x[seg]; !ok {
				return nil, &ReferenceNotFoundError{Ref: ref, Document: doc.DocumentPath, Segment: seg}
			}
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(x) {
				return nil, &ReferenceNotFoundError{Ref: ref, Document: doc.DocumentPath, Segment: seg}
			}
			v = x[i]
		default:
			return nil, &ReferenceNotFoundError{Ref: ref, Document: doc.DocumentPath, Segment: seg}
		}
	}
	key := docPointer{doc, "/" + strings.Join(walked, "/")}
	if s, ok := r.extensions[key]; ok {
		return s, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := new(Schema)
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	r.extensions[key] = s
	if err := r.resolveTree(ctx, doc, s, depth+1); err != nil {
		return nil, err
	}
	return s, nil
}

// checkCycles reports a reference chain in any known document that never
// reaches a schema with content.
func (r *Resolver) checkCycles() error {
	roots := slices.Clone(r.roots)
	for _, s := range r.extensions {
		roots = append(roots, s)
	}
	for _, root := range roots {
		for s := range root.All() {
			if s.reference == nil {
				continue
			}
			if _, err := s.ActualSchema(); err != nil {
				return err
			}
		}
	}
	return nil
}

func indexSchemas(ss []*Schema, idx string) *Schema {
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 || i >= len(ss) {
		return nil
	}
	return ss[i]
}

// canonicalLocation resolves loc against base, the location of the
// referring document. URLs are resolved as URLs; anything else is
// treated as a file path.
func canonicalLocation(base, loc string) string {
	if loc == "" {
		return base
	}
	if u, err := url.Parse(loc); err == nil && isRemote(u) {
		u.Fragment = ""
		return u.String()
	}
	if b, err := url.Parse(base); err == nil && isRemote(b) {
		u, err := url.Parse(loc)
		if err != nil {
			return loc
		}
		res := b.ResolveReference(u)
		res.Fragment = ""
		return res.String()
	}
	loc = strings.TrimPrefix(loc, "file://")
	if filepath.IsAbs(loc) || base == "" {
		return filepath.Clean(loc)
	}
	return filepath.Join(filepath.Dir(base), loc)
}

func isRemote(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}
