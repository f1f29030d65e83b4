package typetree

import "strconv"

// commonStringsList is a best-effort reconstruction of the engine's built-in
// type-tree string table: a null-separated catalogue of type and field
// names so common across every object graph that the blob form of a node
// record can reference them by a shared dictionary key instead of spending
// string-buffer bytes on them in every single serialized file. The binary
// layout (§4.6) only defines how a dictionary key is distinguished from a
// string-buffer offset (the high bit of the 32-bit value); the concrete
// table contents are not part of the wire format and are reproduced here
// from the well-known list shared across Unity tooling.
//
// Entries are listed in the table's canonical order; offsets are the
// cumulative byte position of each entry (including previous entries' null
// terminators), computed once at init time rather than hand-maintained.
var commonStringsList = []string{
	"AABB",
	"AnimationClip",
	"AnimationCurve",
	"AnimationState",
	"Array",
	"Base",
	"BitField",
	"bitset",
	"bool",
	"char",
	"ColorRGBA",
	"Component",
	"data",
	"deque",
	"double",
	"dynamic_array",
	"FastPropertyName",
	"first",
	"float",
	"Font",
	"GameObject",
	"Generic Mono",
	"GradientNEW",
	"GUID",
	"GUIStyle",
	"int",
	"list",
	"long long",
	"map",
	"Matrix4x4f",
	"MdFour",
	"MonoBehaviour",
	"MonoScript",
	"m_ByteSize",
	"m_Curve",
	"m_EditorClassIdentifier",
	"m_EditorHideFlags",
	"m_Enabled",
	"m_ExtensionPtr",
	"m_GameObject",
	"m_Index",
	"m_IsArray",
	"m_IsStatic",
	"m_MetaFlag",
	"m_Name",
	"m_ObjectHideFlags",
	"m_PrefabInternal",
	"m_PrefabParentObject",
	"m_Script",
	"m_StaticEditorFlags",
	"m_Type",
	"m_Version",
	"Object",
	"pair",
	"PPtr<Component>",
	"PPtr<GameObject>",
	"PPtr<Material>",
	"PPtr<MonoBehaviour>",
	"PPtr<MonoScript>",
	"PPtr<Object>",
	"PPtr<Prefab>",
	"PPtr<Sprite>",
	"PPtr<TextAsset>",
	"PPtr<Texture>",
	"PPtr<Texture2D>",
	"PPtr<Transform>",
	"Prefab",
	"Quaternionf",
	"Rectf",
	"Rendering",
	"RenderSettings",
	"second",
	"set",
	"short",
	"size",
	"SInt16",
	"SInt32",
	"SInt64",
	"SInt8",
	"staticvector",
	"string",
	"TextAsset",
	"TextMesh",
	"Texture",
	"Texture2D",
	"Transform",
	"TypelessData",
	"UInt16",
	"UInt32",
	"UInt64",
	"UInt8",
	"unsigned int",
	"unsigned long long",
	"unsigned short",
	"vector",
	"Vector2f",
	"Vector3f",
	"Vector4f",
	"m_ScriptingClassIdentifier",
	"Gradient",
	"Type*",
	"int2_storage",
	"int3_storage",
	"UnityPropertySheet",
	"UnityTexEnv",
	"m_Texture",
	"m_Scale",
	"m_Offset",
	"m_Father",
	"m_Children",
	"m_LocalRotation",
	"m_LocalPosition",
	"m_LocalScale",
	"m_ConstrainProportionsScale",
	"m_LocalEulerAnglesHint",
	"m_RootOrder",
	"FileSize",
}

var commonStrings map[uint32]string

func init() {
	commonStrings = make(map[uint32]string, len(commonStringsList))
	var offset uint32
	for _, s := range commonStringsList {
		commonStrings[offset] = s
		offset += uint32(len(s)) + 1 // +1 for the null terminator
	}
}

// lookupCommonString resolves a dictionary key (the low 31 bits of a blob
// node's string-offset field) to its built-in name. Unknown keys fall back
// to their decimal text, matching the original's behavior for a table that
// hasn't kept pace with newer engine releases.
func lookupCommonString(key uint32) string {
	if s, ok := commonStrings[key]; ok {
		return s
	}
	return strconv.FormatUint(uint64(key), 10)
}
