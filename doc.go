// Package drm provides a library to interact with DRM
// (Direct Rendering Manager) and KMS (Kernel Mode Setting) interfaces.
//
// Besides opening device nodes and reading driver capabilities, it defines
// the fourcc Format and Modifier types shared by the capability probing
// packages: formats holds per-device format/modifier sets, dmabuf fills them
// from a driver query and mode reads the KMS objects that describe which
// layouts a device can scan out.
package drm
