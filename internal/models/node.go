package models

// Kind classifies a structure node
type Kind int

const (
	KindNote Kind = iota
	KindFile
	KindContainer
)

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindFile:
		return "file"
	case KindContainer:
		return "notebook"
	default:
		return "unknown"
	}
}

// Node is a located structure node. Exactly one of Item and Container is set,
// matching Kind.
type Node struct {
	Kind      Kind
	Item      *Item
	Container *Container
}

// ItemNode wraps an item, classifying it as a file or a note.
func ItemNode(item *Item) Node {
	if item.IsFile() {
		return Node{Kind: KindFile, Item: item}
	}
	return Node{Kind: KindNote, Item: item}
}

// ContainerNode wraps a container.
func ContainerNode(c *Container) Node {
	return Node{Kind: KindContainer, Container: c}
}

// ID returns the node identifier.
func (n Node) ID() string {
	if n.Container != nil {
		return n.Container.ID
	}
	if n.Item != nil {
		return n.Item.ID
	}
	return ""
}

// Title returns the item title or the container name.
func (n Node) Title() string {
	if n.Container != nil {
		return n.Container.Name
	}
	if n.Item != nil {
		return n.Item.Title
	}
	return ""
}

// IsContainer reports whether the node is a notebook or sub-notebook.
func (n Node) IsContainer() bool {
	return n.Kind == KindContainer
}
