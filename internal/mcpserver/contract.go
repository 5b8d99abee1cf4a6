package mcpserver

// MetadataContract describes how an author marks up a source document so that
// docpress can turn it into a post.
const MetadataContract = `# docpress Source Document Contract

Every .docx document in the source directory becomes one post. The first
table in the document is read as metadata and removed from the post body.

## Metadata table

| key      | value                 |
|----------|-----------------------|
| title    | Hello world           |
| author   | Jane Doe              |
| category | news, releases        |

Rules:

1. **The first table is metadata.** A document without any table is rejected.
2. Only the first two cells of each row are read: key, then value.
3. Keys are case-insensitive. Accepted keys:
   - title: ` + "`title`, `标题`, `titel`, `titre`, `título`" + `
   - author: ` + "`author`, `作者`, `autor`, `auteur`" + `
   - category: ` + "`category`, `categories`, `分类`, `类别`, `kategorie`, `catégorie`, `categoría`" + `
4. Unknown keys and rows without a key are ignored. An empty title or author
   cell leaves that field empty; an empty category cell adds nothing.
5. Categories are lowercased. One cell may list several, separated by commas
   or line breaks; several category rows accumulate.
6. Title and author: the last row wins.

## Output

Posts are named ` + "`YYYY-MM-DD-<hash>.html`" + `, where the date is the source's
creation date and the hash fingerprints the source bytes. Editing a document
produces a new post and removes the old one on the next sync. Files whose
name starts with ` + "`~$`" + ` are editor lock files and are ignored.
`
