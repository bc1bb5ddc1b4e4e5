// Package models defines the data records exchanged with the Xueersi coding platform.
//
// Records mirror the remote JSON field names byte-for-byte:
//   - [InfoData] : profile returned by /api/user/info
//   - [WorkData] : a published work (project) from /api/compilers/v2/{id}
//   - [CommentData] : a top-level comment, with its first replies embedded in [ReplyListData]
//   - [ReplyData] : a reply under a comment
//   - [Page] : one page of a comment or reply listing
//   - [Thread] : a work with every comment and reply, built by an export
//
// The remote API is inconsistent about numeric encoding (some counters and page numbers arrive as
// strings, some ids as numbers), so numeric fields that have been seen both ways use [FlexInt].
package models
