package dat

// ---------------------------------------------------------------------------
// Class tags
// ---------------------------------------------------------------------------

// ClassTag identifies the native class an instance binding refers to.
type ClassTag uint8

const (
	ClassNone ClassTag = iota
	ClassNpc
	ClassMission
	ClassInfo
	ClassItem
	ClassItemReact
	ClassFocus
	ClassMenu
	ClassMenuItem
	ClassSfx
	ClassPfx
	ClassVfx
	ClassFXEmitKey
	ClassMusicTheme
	ClassMusicJingle
	ClassGilValues
	ClassFightAI
	ClassCamSys
	ClassSpell
	ClassSvm
)

var classTagNames = [...]string{
	ClassNone:        "none",
	ClassNpc:         "npc",
	ClassMission:     "mission",
	ClassInfo:        "info",
	ClassItem:        "item",
	ClassItemReact:   "itemreact",
	ClassFocus:       "focus",
	ClassMenu:        "menu",
	ClassMenuItem:    "menuitem",
	ClassSfx:         "sfx",
	ClassPfx:         "pfx",
	ClassVfx:         "vfx",
	ClassFXEmitKey:   "fxemitkey",
	ClassMusicTheme:  "musictheme",
	ClassMusicJingle: "musicjingle",
	ClassGilValues:   "gilvalues",
	ClassFightAI:     "fightai",
	ClassCamSys:      "camsys",
	ClassSpell:       "spell",
	ClassSvm:         "svm",
}

func (c ClassTag) String() string {
	if int(c) < len(classTagNames) {
		return classTagNames[c]
	}
	return "unknown"
}

// ---------------------------------------------------------------------------
// Instance: a native object scripts can bind to
// ---------------------------------------------------------------------------

// Handle identifies an object registered with an Arena. Zero means none.
type Handle uint32

// Instance is a native object that script symbols can be bound to. Hosts
// embed InstanceHeader in their structs to satisfy it.
type Instance interface {
	Header() *InstanceHeader
}

// InstanceHeader carries the bookkeeping the runtime needs on every bound
// object.
type InstanceHeader struct {
	handle   Handle
	owner    *Arena
	useCount int
	symbol   int // symbol index + 1, zero when unset

	// UserData is free for the host.
	UserData any
}

// Header implements Instance.
func (h *InstanceHeader) Header() *InstanceHeader { return h }

// UseCount returns how many script bindings currently refer to the object.
func (h *InstanceHeader) UseCount() int { return h.useCount }

// Symbol returns the index of the instance symbol the object was
// initialized from, or NotFound.
func (h *InstanceHeader) Symbol() int { return h.symbol - 1 }

// SetSymbol records the instance symbol the object was initialized from.
func (h *InstanceHeader) SetSymbol(index int) { h.symbol = index + 1 }

// Handle returns the arena handle of the object, zero if unregistered.
func (h *InstanceHeader) Handle() Handle { return h.handle }

// ---------------------------------------------------------------------------
// Arena: handle table for bound objects
// ---------------------------------------------------------------------------

// Arena maps handles to live native objects. Bindings hold handles rather
// than pointers, so removing an object from the arena invalidates every
// binding to it. An object leaves the arena once its last binding is
// released; binding it again registers it under a fresh handle. Handles
// are never reused.
type Arena struct {
	objects map[Handle]Instance
	next    Handle
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{objects: make(map[Handle]Instance)}
}

// Register adds obj to the arena and returns its handle. Registering the
// same object twice returns the existing handle.
func (a *Arena) Register(obj Instance) Handle {
	if obj == nil {
		return 0
	}
	h := obj.Header()
	if h.owner == a && h.handle != 0 {
		if _, ok := a.objects[h.handle]; ok {
			return h.handle
		}
	}
	a.next++
	h.handle = a.next
	h.owner = a
	a.objects[h.handle] = obj
	return h.handle
}

// Resolve returns the object for h, or nil when h is zero or was removed.
func (a *Arena) Resolve(h Handle) Instance {
	if h == 0 {
		return nil
	}
	return a.objects[h]
}

// HandleOf returns the handle of obj in this arena, zero if not registered.
func (a *Arena) HandleOf(obj Instance) Handle {
	if obj == nil {
		return 0
	}
	h := obj.Header()
	if h.owner != a {
		return 0
	}
	if _, ok := a.objects[h.handle]; !ok {
		return 0
	}
	return h.handle
}

// Remove drops obj from the arena. Bindings still holding its handle
// resolve to nil afterwards.
func (a *Arena) Remove(obj Instance) {
	h := a.HandleOf(obj)
	if h == 0 {
		return
	}
	if n := obj.Header().useCount; n > 0 {
		log.Warningf("removing instance %d with %d live bindings", h, n)
	}
	a.evict(h, obj)
}

func (a *Arena) evict(h Handle, obj Instance) {
	delete(a.objects, h)
	hdr := obj.Header()
	hdr.owner = nil
	hdr.handle = 0
}

// Len returns the number of live objects.
func (a *Arena) Len() int { return len(a.objects) }

// UseCount returns the binding count of the object behind h.
func (a *Arena) UseCount(h Handle) int {
	if obj := a.Resolve(h); obj != nil {
		return obj.Header().useCount
	}
	return 0
}

func (a *Arena) retain(h Handle) {
	if obj := a.Resolve(h); obj != nil {
		obj.Header().useCount++
	}
}

func (a *Arena) release(h Handle) {
	obj := a.Resolve(h)
	if obj == nil {
		return
	}
	hdr := obj.Header()
	if hdr.useCount <= 0 {
		log.Errorf("instance %d: use count would drop below zero", h)
		hdr.useCount = 0
		return
	}
	hdr.useCount--
	if hdr.useCount == 0 {
		a.evict(h, obj)
	}
}

// ---------------------------------------------------------------------------
// InstanceRef: a counted, weak binding from a symbol to an object
// ---------------------------------------------------------------------------

// InstanceRef binds a script symbol to a native object. The object's use
// count tracks how many refs point at it. Releasing the last ref evicts the
// object from its arena.
type InstanceRef struct {
	handle Handle
	class  ClassTag
}

// Handle returns the bound handle, zero when unbound.
func (r InstanceRef) Handle() Handle { return r.handle }

// Class returns the class tag of the binding.
func (r InstanceRef) Class() ClassTag { return r.class }

// IsSet reports whether the ref holds a handle.
func (r InstanceRef) IsSet() bool { return r.handle != 0 }

// InstanceOf reports whether the ref is bound with class c.
func (r InstanceRef) InstanceOf(c ClassTag) bool { return r.handle != 0 && r.class == c }

// Get resolves the bound object, nil when unbound or removed.
func (r InstanceRef) Get(a *Arena) Instance {
	if a == nil {
		return nil
	}
	return a.Resolve(r.handle)
}

// Bind points the ref at obj, registering it with a if needed.
func (r *InstanceRef) Bind(a *Arena, obj Instance, class ClassTag) {
	h := a.Register(obj)
	a.retain(h)
	a.release(r.handle)
	r.handle = h
	r.class = class
	if h == 0 {
		r.class = ClassNone
	}
}

// Assign copies other into r, adjusting use counts.
func (r *InstanceRef) Assign(a *Arena, other InstanceRef) {
	if r.handle == other.handle {
		r.class = other.class
		return
	}
	a.retain(other.handle)
	a.release(r.handle)
	*r = other
}

// Clone returns a copy of r that holds its own use count.
func (r InstanceRef) Clone(a *Arena) InstanceRef {
	a.retain(r.handle)
	return r
}

// Release unbinds the ref.
func (r *InstanceRef) Release(a *Arena) {
	if r.handle != 0 {
		a.release(r.handle)
	}
	*r = InstanceRef{}
}
