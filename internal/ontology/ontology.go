// Package ontology parses class/attribute declarations into attribute types
// and checks scene annotations against them.
//
// An annotation is checked against the class named by its object's type:
// every attribute it carries must be declared, every mandatory attribute that
// applies to its sensor kind must be present, and every value must match its
// declared type and options. Attributes scoped to a frame or an object must
// additionally carry the same value on all annotations sharing that frame or
// object.
package ontology

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/railcheck/internal/errors"
	"github.com/dshills/railcheck/internal/issue"
	"github.com/dshills/railcheck/internal/scene"
)

// Class is the set of attributes declared for one object type.
type Class struct {
	Name       string
	Attributes map[string]Attribute
	names      []string
}

// Ontology maps class names to classes. It is read-only after Parse and may
// be shared between concurrent checks.
type Ontology struct {
	Classes map[string]*Class
}

// Parse builds an Ontology from doc. A malformed declaration is a
// configuration error naming the offending class and attribute.
func Parse(doc Document) (*Ontology, error) {
	o := &Ontology{Classes: make(map[string]*Class, len(doc))}
	for _, className := range sortedKeys(doc) {
		c := &Class{Name: className, Attributes: make(map[string]Attribute)}
		o.Classes[className] = c
		if doc[className] == nil {
			continue
		}
		attrs, ok := asMap(doc[className])
		if !ok {
			return nil, errors.Configurationf("ontology: class %q must be a mapping of attribute name to declaration", className)
		}
		for _, attrName := range sortedKeys(attrs) {
			decl, ok := asMap(attrs[attrName])
			if !ok {
				return nil, errors.Configurationf("ontology: %s.%s: declaration must be a mapping", className, attrName)
			}
			attr, err := ParseAttribute(decl)
			if err != nil {
				return nil, errors.Wrapf(err, "ontology: %s.%s", className, attrName)
			}
			c.Attributes[attrName] = attr
			c.names = append(c.names, attrName)
		}
	}
	return o, nil
}

// Check validates every annotation of s against the ontology. Per-annotation
// findings come first in scene order, followed by scope inconsistencies in
// the order their scope group was first seen.
func (o *Ontology) Check(s *scene.Scene) []issue.Issue {
	var issues []issue.Issue
	groups := newScopeGroups()

	for _, frame := range s.Frames {
		for _, a := range frame.Annotations {
			obj, ok := s.Object(a.ObjectID)
			if !ok {
				continue
			}
			ids := issue.Identifiers{
				Frame:          issue.Frame(frame.ID),
				Sensor:         a.SensorID,
				Object:         a.ObjectID,
				ObjectType:     obj.Type,
				Annotation:     a.ID,
				AnnotationType: string(a.Type),
			}
			class, ok := o.Classes[obj.Type]
			if !ok {
				issues = append(issues, issue.New(issue.TypeObjectTypeUndefined, ids,
					fmt.Sprintf("Object type '%s' is not defined in the ontology.", obj.Type)))
				continue
			}

			sensorType := scene.SensorType("")
			if sensor, ok := s.Sensor(a.SensorID); ok {
				sensorType = sensor.Type
			}
			issues = append(issues, class.checkAnnotation(a, sensorType, ids)...)

			for _, name := range class.names {
				value, ok := a.Attribute(name)
				if !ok {
					continue
				}
				groups.add(name, class.Attributes[name], frame.ID, a.ObjectID, value, ids)
			}
		}
	}

	return append(issues, groups.check()...)
}

// checkAnnotation reports undefined, missing and mistyped attributes of a.
// sensorType is empty when the annotation's sensor is not in the scene; such
// annotations are not checked for missing attributes.
func (c *Class) checkAnnotation(a scene.Annotation, sensorType scene.SensorType, ids issue.Identifiers) []issue.Issue {
	var issues []issue.Issue
	names := a.AttributeNames()

	for _, name := range names {
		if _, declared := c.Attributes[name]; !declared {
			undefined := ids
			undefined.Attribute = name
			issues = append(issues, issue.New(issue.TypeAttributeUndefined, undefined,
				fmt.Sprintf("Undefined attribute '%s' for class '%s'.", name, c.Name)))
		}
	}

	if sensorType != "" {
		for _, name := range c.names {
			attr := c.Attributes[name]
			spec := attr.Spec()
			if _, present := a.Attributes[name]; present || spec.Optional || !spec.AppliesTo(sensorType) {
				continue
			}
			missing := ids
			missing.Attribute = name
			issues = append(issues, issue.New(issue.TypeAttributeMissing, missing,
				fmt.Sprintf("Missing required attribute '%s'.", name)))
		}
	}

	for _, name := range names {
		attr, declared := c.Attributes[name]
		if !declared {
			continue
		}
		issues = append(issues, attr.CheckTypeAndValue(name, a.Attributes[name], ids)...)
	}
	return issues
}

type scopeKey struct {
	attribute string
	scope     Scope
	frame     int
	object    uuid.UUID
}

type scopeMember struct {
	attr  Attribute
	value any
	ids   issue.Identifiers
}

// scopeGroups partitions attribute values by their scope key, remembering
// the order in which keys were first seen.
type scopeGroups struct {
	order   []scopeKey
	members map[scopeKey][]scopeMember
}

func newScopeGroups() *scopeGroups {
	return &scopeGroups{members: make(map[scopeKey][]scopeMember)}
}

func (g *scopeGroups) add(name string, attr Attribute, frame int, object uuid.UUID, value any, ids issue.Identifiers) {
	key := scopeKey{attribute: name, scope: attr.Spec().Scope}
	switch key.scope {
	case ScopeFrame:
		key.frame = frame
	case ScopeObject:
		key.object = object
	default:
		return
	}
	if _, seen := g.members[key]; !seen {
		g.order = append(g.order, key)
	}
	g.members[key] = append(g.members[key], scopeMember{attr: attr, value: value, ids: ids})
}

// check compares every member of a group with the group's first member.
func (g *scopeGroups) check() []issue.Issue {
	var issues []issue.Issue
	for _, key := range g.order {
		members := g.members[key]
		first := members[0]
		for _, m := range members[1:] {
			issues = append(issues, first.attr.CheckScope(key.attribute, first.value, m.value, first.ids, m.ids)...)
		}
	}
	return issues
}
